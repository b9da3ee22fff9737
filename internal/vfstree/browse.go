package vfstree

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/dlnasrv/dlna/upnpav"
)

// DidlResult is the common shape of Browse/Search responses (spec §4.F):
// a DIDL-Lite fragment plus the three UPnP result counters.
type DidlResult struct {
	Result         string
	NumberReturned uint32
	TotalMatches   uint32
	UpdateID       uint32
}

// ErrStartingIndexOnMetadata names BrowseMetadata called with a non-zero
// StartingIndex. BrowseMetadata does not return it: the CDS layer checks
// StartingIndex itself and answers with UPnP error 720 (spec §4.F).
var ErrStartingIndexOnMetadata = fmt.Errorf("vfstree: non-zero StartingIndex on BrowseMetadata")

// BrowseMetadata implements BrowseFlag=BrowseMetadata (spec §4.D/§4.F): the
// single requested object, rendered as a one-element DIDL fragment.
func (t *Tree) BrowseMetadata(id ID, filter Filter) (DidlResult, error) {
	t.mu.Lock()
	obj, ok := t.objects[id]
	t.mu.Unlock()
	if !ok {
		return DidlResult{}, ErrNoSuchObject
	}

	var result string
	var err error
	var updateID uint32
	if obj.IsContainer() {
		result, err = marshalDIDL([]upnpav.Container{t.toDIDLContainer(obj, filter)}, nil)
		updateID = obj.Container.UpdateID
	} else {
		result, err = marshalDIDL(nil, []upnpav.Item{t.toDIDLItem(obj, filter)})
	}
	if err != nil {
		return DidlResult{}, err
	}
	return DidlResult{Result: result, NumberReturned: 1, TotalMatches: 1, UpdateID: updateID}, nil
}

// BrowseDirectChildren implements BrowseFlag=BrowseDirectChildren (spec
// §4.D/§4.F): containers first, then items, both lexicographically sorted
// by title (a fixed, deterministic default SortCriteria), with
// StartingIndex/RequestedCount applied after sorting.
func (t *Tree) BrowseDirectChildren(id ID, filter Filter, startingIndex, requestedCount uint32) (DidlResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	obj, ok := t.objects[id]
	if !ok || !obj.IsContainer() {
		return DidlResult{}, ErrInvalidContainer
	}

	var containers []*Object
	var items []*Object
	for _, childID := range obj.Container.Children {
		child := t.objects[childID]
		if child == nil {
			continue
		}
		if child.IsContainer() {
			containers = append(containers, child)
		} else {
			items = append(items, child)
		}
	}
	slices.SortFunc(containers, func(a, b *Object) int {
		return compareTitle(a.Title(), b.Title())
	})
	slices.SortFunc(items, func(a, b *Object) int {
		return compareTitle(a.Title(), b.Title())
	})

	ordered := append(containers, items...)
	total := uint32(len(ordered))

	start := startingIndex
	if start > total {
		start = total
	}
	end := total
	if requestedCount > 0 && start+requestedCount < total {
		end = start + requestedCount
	}

	var didlContainers []upnpav.Container
	var didlItems []upnpav.Item
	for _, child := range ordered[start:end] {
		if child.IsContainer() {
			didlContainers = append(didlContainers, t.toDIDLContainer(child, filter))
		} else {
			didlItems = append(didlItems, t.toDIDLItem(child, filter))
		}
	}

	result, err := marshalDIDL(didlContainers, didlItems)
	if err != nil {
		return DidlResult{}, err
	}
	return DidlResult{
		Result:         result,
		NumberReturned: end - start,
		TotalMatches:   total,
		UpdateID:       obj.Container.UpdateID,
	}, nil
}

// compareTitle sorts case-insensitively (spec §4.D's Sort rule: "each
// group sorted case-insensitively by title/filename").
func compareTitle(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
