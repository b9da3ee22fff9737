package avts

import "encoding/xml"

// lastChangeVal is one evented variable's <Name val="..."/> entry inside a
// LastChange <InstanceID> element (AVTransport eventing's own nested XML
// document, distinct from the outer GENA propertyset: spec §4.H/§4.K).
type lastChangeVal struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

type lastChangeInstance struct {
	XMLName xml.Name `xml:"InstanceID"`
	Val     string   `xml:"val,attr"`
	Vars    []lastChangeVal
}

type lastChangeEvent struct {
	XMLName   xml.Name `xml:"urn:schemas-upnp-org:metadata-1-0/AVT/ Event"`
	Instances []lastChangeInstance
}

// buildLastChange renders the LastChange evented-variable's value: an XML
// document whose root is <Event> containing one <InstanceID val="N"> with
// every changed AVTransport state variable as a <Name val="value"/> child.
func buildLastChange(instanceID string, vars map[string]string) (string, error) {
	inst := lastChangeInstance{Val: instanceID}
	// Fixed emission order keeps output deterministic for tests.
	order := []string{
		"TransportState", "TransportStatus", "PlaybackStorageMedium",
		"CurrentTrack", "CurrentTrackDuration", "CurrentMediaDuration",
		"CurrentTrackURI", "CurrentTrackMetaData", "AVTransportURI",
		"AVTransportURIMetaData", "NextAVTransportURI", "NextAVTransportURIMetaData",
		"PlaybackStorageMedium", "TransportPlaySpeed", "CurrentTransportActions",
	}
	seen := map[string]bool{}
	for _, name := range order {
		v, ok := vars[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		inst.Vars = append(inst.Vars, lastChangeVal{XMLName: xml.Name{Local: name}, Val: v})
	}
	ev := lastChangeEvent{Instances: []lastChangeInstance{inst}}
	b, err := xml.Marshal(ev)
	if err != nil {
		return "", err
	}
	return xml.Header + string(b), nil
}
