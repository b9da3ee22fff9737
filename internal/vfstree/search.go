package vfstree

import (
	"regexp"
	"strings"

	"github.com/dlnasrv/dlna/upnpav"
)

// predicate is one parsed atomic SearchCriteria clause.
type predicate func(o *Object) bool

var (
	reClassEq      = regexp.MustCompile(`^upnp:class\s*=\s*"([^"]*)"$`)
	reClassDerived = regexp.MustCompile(`^upnp:class\s+derivedfrom\s+"([^"]*)"$`)
	reResContains  = regexp.MustCompile(`^res@protocolInfo\s+contains\s+"([^"]*)"$`)
)

// parseSearchCriteria implements the restricted SearchCriteria grammar of
// spec §4.D: atomic clauses joined by ") and (" (the only combinator this
// server recognises), matching object.upnp:class equality/derivation and
// res@protocolInfo substring containment. An unrecognised clause matches
// everything, rather than failing the whole query (a deliberately lenient
// reading of the original's permissive search, per original_source/).
func parseSearchCriteria(criteria string) []predicate {
	criteria = strings.TrimSpace(criteria)
	criteria = strings.TrimPrefix(criteria, "(")
	criteria = strings.TrimSuffix(criteria, ")")
	if criteria == "" || criteria == "*" {
		return nil
	}
	clauses := strings.Split(criteria, ") and (")

	preds := make([]predicate, 0, len(clauses))
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		preds = append(preds, predicateFor(clause))
	}
	return preds
}

func predicateFor(clause string) predicate {
	if m := reClassEq.FindStringSubmatch(clause); m != nil {
		want := m[1]
		return func(o *Object) bool { return objectClass(o) == want }
	}
	if m := reClassDerived.FindStringSubmatch(clause); m != nil {
		want := m[1]
		return func(o *Object) bool { return strings.HasPrefix(objectClass(o), want) }
	}
	if m := reResContains.FindStringSubmatch(clause); m != nil {
		want := m[1]
		return func(o *Object) bool {
			if o.IsContainer() {
				return false
			}
			for _, r := range o.Resource.Resources {
				if strings.Contains(r.ProtocolInfo.String(), want) {
					return true
				}
			}
			return false
		}
	}
	return func(*Object) bool { return true }
}

func objectClass(o *Object) string {
	if o.IsContainer() {
		return containerClassFor(o.Container.MediaClass)
	}
	return classFor(o.Resource.Item.Profile.MediaClass)
}

func matchesAll(preds []predicate, o *Object) bool {
	for _, p := range preds {
		if !p(o) {
			return false
		}
	}
	return true
}

// SearchDirectChildren implements the Search action (spec §4.D/§4.F):
// recursively walks the subtree rooted at id, collecting every descendant
// object that matches every predicate in criteria, applying
// StartingIndex/RequestedCount over the flattened result. Matches are not
// sorted: they come in depth-first walk order, children in insertion order.
func (t *Tree) SearchDirectChildren(id ID, criteria string, filter Filter, startingIndex, requestedCount uint32) (DidlResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, ok := t.objects[id]
	if !ok || !root.IsContainer() {
		return DidlResult{}, ErrInvalidContainer
	}

	preds := parseSearchCriteria(criteria)
	var matches []*Object
	var walk func(cid ID)
	walk = func(cid ID) {
		obj := t.objects[cid]
		if obj == nil {
			return
		}
		if matchesAll(preds, obj) {
			matches = append(matches, obj)
		}
		if obj.IsContainer() {
			for _, childID := range obj.Container.Children {
				walk(childID)
			}
		}
	}
	for _, childID := range root.Container.Children {
		walk(childID)
	}

	total := uint32(len(matches))
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
	for _, m := range matches[start:end] {
		if m.IsContainer() {
			didlContainers = append(didlContainers, t.toDIDLContainer(m, filter))
		} else {
			didlItems = append(didlItems, t.toDIDLItem(m, filter))
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
		UpdateID:       root.Container.UpdateID,
	}, nil
}
