// Package cms implements the ConnectionManager service (spec §4.G): a
// static, connection-less stub advertising the server's source protocols.
package cms

import (
	"encoding/xml"
	"strings"

	"github.com/dlnasrv/dlna/internal/vfstree"
	"github.com/dlnasrv/dlna/upnp"
)

const (
	ServiceType = "urn:schemas-upnp-org:service:ConnectionManager:1"
	ServiceID   = "urn:upnp-org:serviceId:ConnectionManager"
)

// ActionFunc matches internal/cds's dispatch convention.
type ActionFunc func(args map[string]string) (map[string]string, error)

// Service implements ConnectionManager:1. There's exactly one (non-)
// connection, ID 0, always open (spec §4.G: "no real connection
// lifecycle" Non-goal).
type Service struct {
	Tree *vfstree.Tree
}

func (s *Service) Handlers() map[string]ActionFunc {
	return map[string]ActionFunc{
		"GetProtocolInfo":          s.getProtocolInfo,
		"GetCurrentConnectionIDs":  s.getCurrentConnectionIDs,
		"GetCurrentConnectionInfo": s.getCurrentConnectionInfo,
	}
}

// getProtocolInfo implements GetProtocolInfo (spec §4.G): Source lists
// every protocolInfo reachable in the tree (vfstree.IterSources), Sink is
// always empty (this server never accepts pushed content).
func (s *Service) getProtocolInfo(map[string]string) (map[string]string, error) {
	infos := s.Tree.IterSources()
	seen := map[string]bool{}
	parts := make([]string, 0, len(infos))
	for _, pi := range infos {
		str := pi.String()
		if seen[str] {
			continue
		}
		seen[str] = true
		parts = append(parts, str)
	}
	return map[string]string{
		"Source": strings.Join(parts, ","),
		"Sink":   "",
	}, nil
}

// InitialState renders the connection manager's evented variables as a
// GENA property set, for the initial event a new subscriber must receive.
func (s *Service) InitialState() string {
	info, _ := s.getProtocolInfo(nil)
	ps := upnp.NewPropertySet(
		[2]string{"SourceProtocolInfo", info["Source"]},
		[2]string{"SinkProtocolInfo", info["Sink"]},
		[2]string{"CurrentConnectionIDs", "0"},
	)
	b, err := xml.Marshal(ps)
	if err != nil {
		return ""
	}
	return xml.Header + string(b)
}

func (s *Service) getCurrentConnectionIDs(map[string]string) (map[string]string, error) {
	return map[string]string{"ConnectionIDs": "0"}, nil
}

func (s *Service) getCurrentConnectionInfo(args map[string]string) (map[string]string, error) {
	if args["ConnectionID"] != "" && args["ConnectionID"] != "0" {
		return nil, upnp.Errorf(upnp.ArgumentValueInvalidErrorCode, "unknown ConnectionID %q", args["ConnectionID"])
	}
	return map[string]string{
		"RcsID":                 "-1",
		"AVTransportID":         "-1",
		"ProtocolInfo":          ":::",
		"PeerConnectionManager": "",
		"PeerConnectionID":      "-1",
		"Direction":             "Output",
		"Status":                "OK",
	}, nil
}

func Actions() []upnp.Action {
	return []upnp.Action{
		{Name: "GetProtocolInfo", Arguments: []upnp.Argument{
			{Name: "Source", Direction: "out", RelatedStateVariable: "SourceProtocolInfo"},
			{Name: "Sink", Direction: "out", RelatedStateVariable: "SinkProtocolInfo"},
		}},
		{Name: "GetCurrentConnectionIDs", Arguments: []upnp.Argument{
			{Name: "ConnectionIDs", Direction: "out", RelatedStateVariable: "CurrentConnectionIDs"},
		}},
		{Name: "GetCurrentConnectionInfo", Arguments: []upnp.Argument{
			{Name: "ConnectionID", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_ConnectionID"},
			{Name: "RcsID", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_RcsID"},
			{Name: "AVTransportID", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_AVTransportID"},
			{Name: "ProtocolInfo", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_ProtocolInfo"},
			{Name: "PeerConnectionManager", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_ConnectionManager"},
			{Name: "PeerConnectionID", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_ConnectionID"},
			{Name: "Direction", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Direction"},
			{Name: "Status", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_ConnectionStatus"},
		}},
	}
}

func StateVariables() []upnp.StateVariable {
	return []upnp.StateVariable{
		{Name: "SourceProtocolInfo", DataType: "string", SendEvents: true},
		{Name: "SinkProtocolInfo", DataType: "string", SendEvents: true},
		{Name: "CurrentConnectionIDs", DataType: "string", SendEvents: true},
		{Name: "A_ARG_TYPE_ConnectionStatus", DataType: "string", AllowedValues: []string{"OK", "ContentFormatMismatch", "InsufficientBandwidth", "UnreliableChannel", "Unknown"}},
		{Name: "A_ARG_TYPE_ConnectionManager", DataType: "string"},
		{Name: "A_ARG_TYPE_Direction", DataType: "string", AllowedValues: []string{"Input", "Output"}},
		{Name: "A_ARG_TYPE_ProtocolInfo", DataType: "string"},
		{Name: "A_ARG_TYPE_ConnectionID", DataType: "i4"},
		{Name: "A_ARG_TYPE_AVTransportID", DataType: "i4"},
		{Name: "A_ARG_TYPE_RcsID", DataType: "i4"},
	}
}
