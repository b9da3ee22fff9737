package vfstree

import "strings"

// Filter is a parsed CDS Browse/Search Filter argument (spec §4.D): either
// "*" (everything) or a comma-separated allow-list of element/attribute
// names, attributes prefixed with "@".
type Filter struct {
	all    bool
	fields map[string]bool
}

// alwaysEmitted names are included regardless of the filter (spec §4.D).
var alwaysEmitted = map[string]bool{
	"dc:title":    true,
	"upnp:class":  true,
	"@id":         true,
	"@parentID":   true,
	"@restricted": true,
}

// ParseFilter parses a CDS Filter argument.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return Filter{all: true}
	}
	f := Filter{fields: map[string]bool{}}
	for _, part := range strings.Split(s, ",") {
		f.fields[strings.TrimSpace(part)] = true
	}
	return f
}

// Has reports whether name may be emitted under this filter.
func (f Filter) Has(name string) bool {
	if f.all || alwaysEmitted[name] {
		return true
	}
	return f.fields[name]
}
