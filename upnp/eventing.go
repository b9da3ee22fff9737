package upnp

import "encoding/xml"

// Variable is a single evented state variable value, as carried inside a
// GENA NOTIFY property set.
type Variable struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Property wraps one evented Variable; PropertySet is a sequence of these.
type Property struct {
	Variable Variable `xml:",any"`
}

// PropertySet is the <e:propertyset> GENA notification body.
type PropertySet struct {
	XMLName    xml.Name   `xml:"urn:schemas-upnp-org:event-1-0 e:propertyset"`
	Space      string     `xml:"xmlns:e,attr"`
	Properties []Property `xml:"property"`
}

// NewPropertySet builds a PropertySet from name/value pairs, in the order
// given.
func NewPropertySet(vars ...[2]string) PropertySet {
	ps := PropertySet{Space: "urn:schemas-upnp-org:event-1-0"}
	for _, v := range vars {
		ps.Properties = append(ps.Properties, Property{
			Variable: Variable{XMLName: xml.Name{Local: v[0]}, Value: v[1]},
		})
	}
	return ps
}
