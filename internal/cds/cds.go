// Package cds implements the ContentDirectory service (spec §4.F): the
// SOAP action surface over the VFS (component D), plus its SCPD tables.
package cds

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/internal/vfstree"
	"github.com/dlnasrv/dlna/upnp"
)

// ActionFunc is the shape every service action takes in the dispatcher
// (component K): named string arguments in, named string arguments out.
type ActionFunc func(args map[string]string) (map[string]string, error)

// Service implements ContentDirectory:1 against a single vfstree.Tree.
type Service struct {
	Tree   *vfstree.Tree
	Logger log.Logger
}

// ServiceType is the ContentDirectory service/URN identity (spec §4.F).
const (
	ServiceType = "urn:schemas-upnp-org:service:ContentDirectory:1"
	ServiceID   = "urn:upnp-org:serviceId:ContentDirectory"
)

// Handlers returns the dispatch table for every ContentDirectory action.
func (s *Service) Handlers() map[string]ActionFunc {
	return map[string]ActionFunc{
		"GetSearchCapabilities": s.getSearchCapabilities,
		"GetSortCapabilities":   s.getSortCapabilities,
		"GetSystemUpdateID":     s.getSystemUpdateID,
		"Browse":                s.browse,
		"Search":                s.search,
		"GetFeatureList":        s.getFeatureList,
	}
}

func (s *Service) getSearchCapabilities(map[string]string) (map[string]string, error) {
	return map[string]string{"SearchCaps": "upnp:class,res@protocolInfo"}, nil
}

func (s *Service) getSortCapabilities(map[string]string) (map[string]string, error) {
	return map[string]string{"SortCaps": "dc:title"}, nil
}

// getSystemUpdateID reports the root container's updateID, zero-padded to
// width 10 to match the fixed-width numeric fields used elsewhere in the
// device description.
func (s *Service) getSystemUpdateID(map[string]string) (map[string]string, error) {
	return map[string]string{"Id": fmt.Sprintf("%010d", s.Tree.RootUpdateID())}, nil
}

// InitialState renders SystemUpdateID as a GENA property set, for the
// initial event a new ContentDirectory subscriber must receive.
func (s *Service) InitialState() string {
	ps := upnp.NewPropertySet([2]string{"SystemUpdateID", fmt.Sprintf("%010d", s.Tree.RootUpdateID())})
	b, err := xml.Marshal(ps)
	if err != nil {
		s.Logger.Levelf(log.Warning, "cds: building initial property set: %v", err)
		return ""
	}
	return xml.Header + string(b)
}

func parseObjectID(args map[string]string) (vfstree.ID, error) {
	raw := args["ObjectID"]
	if raw == "" {
		raw = "0"
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, upnp.Errorf(upnp.ArgumentValueInvalidErrorCode, "bad ObjectID %q", raw)
	}
	return vfstree.ID(id), nil
}

func parseUint32(args map[string]string, name string) uint32 {
	v, _ := strconv.ParseUint(args[name], 10, 32)
	return uint32(v)
}

// browse implements the Browse action (spec §4.D/§4.F): dispatches on
// BrowseFlag, and maps a non-zero StartingIndex with BrowseMetadata to
// CantProcessRequest (720), per spec's explicit edge case.
func (s *Service) browse(args map[string]string) (map[string]string, error) {
	id, err := parseObjectID(args)
	if err != nil {
		return nil, err
	}
	filter := vfstree.ParseFilter(args["Filter"])
	startingIndex := parseUint32(args, "StartingIndex")
	requestedCount := parseUint32(args, "RequestedCount")

	var res vfstree.DidlResult
	switch args["BrowseFlag"] {
	case "BrowseMetadata":
		if startingIndex != 0 {
			return nil, upnp.Errorf(upnp.CantProcessRequestErrorCode, "non-zero StartingIndex on BrowseMetadata")
		}
		res, err = s.Tree.BrowseMetadata(id, filter)
	case "BrowseDirectChildren", "":
		res, err = s.Tree.BrowseDirectChildren(id, filter, startingIndex, requestedCount)
	default:
		return nil, upnp.Errorf(upnp.InvalidArgsErrorCode, "unknown BrowseFlag %q", args["BrowseFlag"])
	}
	if err == vfstree.ErrNoSuchObject || err == vfstree.ErrInvalidContainer {
		return nil, upnp.Errorf(upnp.NoSuchObjectErrorCode, "no such object %s", args["ObjectID"])
	}
	if err != nil {
		return nil, err
	}
	return didlResultArgs(res), nil
}

// search implements the Search action (spec §4.D/§4.F).
func (s *Service) search(args map[string]string) (map[string]string, error) {
	id, err := parseObjectID(map[string]string{"ObjectID": args["ContainerID"]})
	if err != nil {
		return nil, err
	}
	filter := vfstree.ParseFilter(args["Filter"])
	startingIndex := parseUint32(args, "StartingIndex")
	requestedCount := parseUint32(args, "RequestedCount")

	res, err := s.Tree.SearchDirectChildren(id, args["SearchCriteria"], filter, startingIndex, requestedCount)
	if err == vfstree.ErrInvalidContainer {
		return nil, upnp.Errorf(upnp.NoSuchObjectErrorCode, "no such object %s", args["ContainerID"])
	}
	if err != nil {
		return nil, err
	}
	return didlResultArgs(res), nil
}

// didlResultArgs formats the Browse/Search response envelope's numeric
// fields zero-padded to width 10 (spec §4.F, scenario S1).
func didlResultArgs(res vfstree.DidlResult) map[string]string {
	return map[string]string{
		"Result":         res.Result,
		"NumberReturned": fmt.Sprintf("%010d", res.NumberReturned),
		"TotalMatches":   fmt.Sprintf("%010d", res.TotalMatches),
		"UpdateID":       fmt.Sprintf("%010d", res.UpdateID),
	}
}

// getFeatureList reports an empty Samsung/XBox feature list; this server
// advertises no vendor-specific CDS extensions (spec §4.F's Non-goal on
// vendor feature lists beyond the bare envelope).
func (s *Service) getFeatureList(map[string]string) (map[string]string, error) {
	return map[string]string{"FeatureList": `<Features xmlns="urn:schemas-upnp-org:av:avs" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="urn:schemas-upnp-org:av:avs http://www.upnp.org/schemas/av/avs.xsd"/>`}, nil
}

// Actions is the SCPD action table for ContentDirectory:1.
func Actions() []upnp.Action {
	return []upnp.Action{
		{Name: "GetSearchCapabilities", Arguments: []upnp.Argument{
			{Name: "SearchCaps", Direction: "out", RelatedStateVariable: "SearchCapabilities"},
		}},
		{Name: "GetSortCapabilities", Arguments: []upnp.Argument{
			{Name: "SortCaps", Direction: "out", RelatedStateVariable: "SortCapabilities"},
		}},
		{Name: "GetSystemUpdateID", Arguments: []upnp.Argument{
			{Name: "Id", Direction: "out", RelatedStateVariable: "SystemUpdateID"},
		}},
		{Name: "Browse", Arguments: []upnp.Argument{
			{Name: "ObjectID", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_ObjectID"},
			{Name: "BrowseFlag", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_BrowseFlag"},
			{Name: "Filter", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Filter"},
			{Name: "StartingIndex", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Index"},
			{Name: "RequestedCount", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "SortCriteria", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_SortCriteria"},
			{Name: "Result", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Result"},
			{Name: "NumberReturned", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "TotalMatches", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "UpdateID", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_UpdateID"},
		}},
		{Name: "Search", Arguments: []upnp.Argument{
			{Name: "ContainerID", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_ObjectID"},
			{Name: "SearchCriteria", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_SearchCriteria"},
			{Name: "Filter", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Filter"},
			{Name: "StartingIndex", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Index"},
			{Name: "RequestedCount", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "SortCriteria", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_SortCriteria"},
			{Name: "Result", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Result"},
			{Name: "NumberReturned", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "TotalMatches", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Count"},
			{Name: "UpdateID", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_UpdateID"},
		}},
		{Name: "GetFeatureList", Arguments: []upnp.Argument{
			{Name: "FeatureList", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Featurelist"},
		}},
	}
}

// StateVariables is the SCPD state-variable table for ContentDirectory:1.
func StateVariables() []upnp.StateVariable {
	return []upnp.StateVariable{
		{Name: "SearchCapabilities", DataType: "string"},
		{Name: "SortCapabilities", DataType: "string"},
		{Name: "SystemUpdateID", DataType: "ui4", SendEvents: true},
		{Name: "A_ARG_TYPE_ObjectID", DataType: "string"},
		{Name: "A_ARG_TYPE_Result", DataType: "string"},
		{Name: "A_ARG_TYPE_SearchCriteria", DataType: "string"},
		{Name: "A_ARG_TYPE_BrowseFlag", DataType: "string", AllowedValues: []string{"BrowseMetadata", "BrowseDirectChildren"}},
		{Name: "A_ARG_TYPE_Filter", DataType: "string"},
		{Name: "A_ARG_TYPE_SortCriteria", DataType: "string"},
		{Name: "A_ARG_TYPE_Index", DataType: "ui4"},
		{Name: "A_ARG_TYPE_Count", DataType: "ui4"},
		{Name: "A_ARG_TYPE_UpdateID", DataType: "ui4"},
		{Name: "A_ARG_TYPE_Featurelist", DataType: "string"},
	}
}
