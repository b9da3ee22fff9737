package upnp

import (
	"encoding/xml"
	"strings"
)

// Argument is one <argument> of an <action> in an SCPD action list.
type Argument struct {
	Name                 string
	Direction            string // "in" or "out"
	RelatedStateVariable string
}

// Action is one <action> entry of an SCPD's <actionList>.
type Action struct {
	Name      string
	Arguments []Argument
}

// StateVariable is one <stateVariable> entry of an SCPD's
// <serviceStateTable>.
type StateVariable struct {
	Name          string
	SendEvents    bool
	DataType      string // string|boolean|i2|ui2|i4|ui4|uri
	AllowedValues []string
}

type scpdArgXML struct {
	Name                 string `xml:"name"`
	Direction            string `xml:"direction"`
	RelatedStateVariable string `xml:"relatedStateVariable"`
}

type scpdActionXML struct {
	Name      string       `xml:"name"`
	Arguments []scpdArgXML `xml:"argumentList>argument,omitempty"`
}

type scpdStateVarXML struct {
	SendEvents    string   `xml:"sendEvents,attr"`
	Name          string   `xml:"name"`
	DataType      string   `xml:"dataType"`
	AllowedValues []string `xml:"allowedValueList>allowedValue,omitempty"`
}

type scpdDoc struct {
	XMLName       struct{}          `xml:"urn:schemas-upnp-org:service-1-0 scpd"`
	SpecVersion   SpecVersion       `xml:"specVersion"`
	Actions       []scpdActionXML   `xml:"actionList>action"`
	StateVariable []scpdStateVarXML `xml:"serviceStateTable>stateVariable"`
}

// BuildSCPD emits the SCPD XML document (§4.E) for a service's action and
// state-variable tables.
func BuildSCPD(actions []Action, vars []StateVariable) string {
	doc := scpdDoc{SpecVersion: SpecVersion{Major: 1, Minor: 0}}
	for _, a := range actions {
		ax := scpdActionXML{Name: a.Name}
		for _, arg := range a.Arguments {
			ax.Arguments = append(ax.Arguments, scpdArgXML{
				Name:                 arg.Name,
				Direction:            arg.Direction,
				RelatedStateVariable: arg.RelatedStateVariable,
			})
		}
		doc.Actions = append(doc.Actions, ax)
	}
	for _, v := range vars {
		sendEvents := "no"
		if v.SendEvents {
			sendEvents = "yes"
		}
		doc.StateVariable = append(doc.StateVariable, scpdStateVarXML{
			SendEvents:    sendEvents,
			Name:          v.Name,
			DataType:      v.DataType,
			AllowedValues: v.AllowedValues,
		})
	}
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		// The table is static per-service data; a marshal failure here is a
		// programming error in the table itself.
		panic(err)
	}
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.Write(b)
	return sb.String()
}
