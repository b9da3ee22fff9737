// Package soap implements just enough of SOAP 1.1 for UPnP control: the
// envelope/body wrapper around an action request, and the UPnPError fault
// body.
package soap

import "encoding/xml"

// Envelope is the outer SOAP envelope of an action request.
type Envelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    Body     `xml:"Body"`
}

// Body carries the raw inner action element; callers re-decode Action
// against whatever argument struct the action expects.
type Body struct {
	Action []byte `xml:",innerxml"`
}

// Arg is a single SOAP argument, used both for action requests (decoded by
// field name) and responses (marshalled with an explicit XML name).
type Arg struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Fault is a SOAP 1.1 fault body wrapping a UPnP error detail.
type Fault struct {
	XMLName     xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
	FaultCode   string   `xml:"faultcode"`
	FaultString string   `xml:"faultstring"`
	Detail      Detail   `xml:"detail"`
}

// Detail wraps the inner UPnPError element.
type Detail struct {
	UPnPError any `xml:"urn:schemas-upnp-org:control-1-0 UPnPError"`
}

// NewFault builds a Fault whose faultstring is faultString and whose detail
// is the given UPnP error value (typically an upnp.Error).
func NewFault(faultString string, upnpError any) Fault {
	return Fault{
		FaultCode:   "s:Client",
		FaultString: faultString,
		Detail:      Detail{UPnPError: upnpError},
	}
}
