package dispatch

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/soap"
	"github.com/dlnasrv/dlna/upnp"
)

// rawElement captures one XML element's name and chardata, used both to
// decode an action's argument children and to encode a response's.
type rawElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// rawAction captures the inner element of a SOAP Body: its qualified name
// (namespace is the service URN, local name is the action) and its
// argument children.
type rawAction struct {
	XMLName xml.Name
	Args    []rawElement `xml:",any"`
}

func decodeAction(body []byte) (action string, args map[string]string, err error) {
	var a rawAction
	if err := xml.Unmarshal(body, &a); err != nil {
		return "", nil, fmt.Errorf("dispatch: decoding action body: %w", err)
	}
	args = make(map[string]string, len(a.Args))
	for _, e := range a.Args {
		args[e.XMLName.Local] = e.Value
	}
	return a.XMLName.Local, args, nil
}

func encodeActionResponse(serviceType, action string, args map[string]string) ([]byte, error) {
	resp := rawAction{XMLName: xml.Name{Space: serviceType, Local: action + "Response"}}
	for name, value := range args {
		resp.Args = append(resp.Args, rawElement{XMLName: xml.Name{Local: name}, Value: value})
	}
	inner, err := xml.Marshal(resp)
	if err != nil {
		return nil, err
	}
	env := soap.Envelope{Body: soap.Body{Action: inner}}
	b, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

func encodeFault(faultString string, uerr upnp.Error) []byte {
	faultXML, err := xml.Marshal(soap.NewFault(faultString, uerr))
	if err != nil {
		return []byte(xml.Header)
	}
	env := soap.Envelope{Body: soap.Body{Action: faultXML}}
	b, err := xml.Marshal(env)
	if err != nil {
		return []byte(xml.Header)
	}
	return append([]byte(xml.Header), b...)
}

// ServeControl handles a service's HTTP control endpoint (the SOAP POST
// carrying a SOAPACTION header), per spec §4.K/§6.
func (d *Dispatcher) ServeControl(svc *Service, w http.ResponseWriter, r *http.Request) {
	soapAction, err := upnp.ParseActionHTTPHeader(r.Header.Get("SOAPACTION"))
	if err != nil {
		http.Error(w, "bad SOAPACTION", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	var env soap.Envelope
	if err := xml.Unmarshal(body, &env); err != nil {
		http.Error(w, "bad envelope", http.StatusBadRequest)
		return
	}
	action, args, err := decodeAction(env.Body.Action)
	if err != nil {
		http.Error(w, "bad action body", http.StatusBadRequest)
		return
	}

	handler, ok := svc.Handlers[action]
	if !ok {
		d.writeFault(w, upnp.Errorf(upnp.InvalidActionErrorCode, "unknown action %q", action))
		return
	}
	out, err := handler(args)
	if err != nil {
		uerr := upnp.ConvertError(err)
		d.logger.Levelf(log.Debug, "dispatch: %s.%s failed: %v", soapAction.Type(), action, uerr)
		d.writeFault(w, uerr)
		return
	}
	respBody, err := encodeActionResponse(svc.Type.String(), action, out)
	if err != nil {
		d.writeFault(w, upnp.Errorf(upnp.ActionFailedErrorCode, "encoding response: %v", err))
		return
	}
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Write(respBody)
}

func (d *Dispatcher) writeFault(w http.ResponseWriter, uerr upnp.Error) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(encodeFault(uerr.Description, uerr))
}
