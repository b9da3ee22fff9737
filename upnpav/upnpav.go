// Package upnpav implements the DIDL-Lite object model used in
// ContentDirectory Browse/Search results: containers, items and their
// resources.
package upnpav

import "encoding/xml"

// Resource is a single transport-protocol binding for an item: a <res>
// element carrying the stream URL and its protocolInfo plus optional
// media properties.
type Resource struct {
	XMLName      xml.Name `xml:"res"`
	ProtocolInfo string   `xml:"protocolInfo,attr"`
	Size         uint64   `xml:"size,attr,omitempty"`
	Bitrate      uint     `xml:"bitrate,attr,omitempty"`
	Duration     string   `xml:"duration,attr,omitempty"`
	Resolution   string   `xml:"resolution,attr,omitempty"`
	SampleFrequency uint  `xml:"sampleFrequency,attr,omitempty"`
	BitsPerSample   uint  `xml:"bitsPerSample,attr,omitempty"`
	NrAudioChannels uint  `xml:"nrAudioChannels,attr,omitempty"`
	URL          string   `xml:",chardata"`
}

// Object is the common header shared by Container and Item: id, parent,
// class, title, and the assorted optional dc:/upnp: metadata fields.
type Object struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	Restricted int    `xml:"restricted,attr"`
	Class      string `xml:"upnp:class"`
	Title      string `xml:"dc:title"`

	Creator        string `xml:"dc:creator,omitempty"`
	Artist         string `xml:"upnp:artist,omitempty"`
	Description    string `xml:"dc:description,omitempty"`
	Album          string `xml:"upnp:album,omitempty"`
	OriginalTrackNo int   `xml:"upnp:originalTrackNumber,omitempty"`
	Genre          string `xml:"upnp:genre,omitempty"`
}

// Container is a DIDL-Lite <container>.
type Container struct {
	XMLName    xml.Name `xml:"container"`
	Object
	ChildCount int  `xml:"childCount,attr"`
	Searchable int  `xml:"searchable,attr"`
}

// Item is a DIDL-Lite <item>, carrying one Resource per registered
// transport protocol.
type Item struct {
	XMLName xml.Name `xml:"item"`
	Object
	Res []Resource `xml:"res"`
}

// DIDLLite is the <DIDL-Lite> envelope wrapping a sequence of containers
// and/or items.
type DIDLLite struct {
	XMLName    xml.Name `xml:"DIDL-Lite"`
	XMLNS      string   `xml:"xmlns,attr"`
	XMLNSDC    string   `xml:"xmlns:dc,attr"`
	XMLNSUPnP  string   `xml:"xmlns:upnp,attr"`
	Containers []Container `xml:"container,omitempty"`
	Items      []Item      `xml:"item,omitempty"`
}

// NewDIDLLite builds an (empty-namespace-correct) envelope with the standard
// three XML namespaces DIDL-Lite content uses.
func NewDIDLLite() DIDLLite {
	return DIDLLite{
		XMLNS:     "urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/",
		XMLNSDC:   "http://purl.org/dc/elements/1.1/",
		XMLNSUPnP: "urn:schemas-upnp-org:metadata-1-0/upnp/",
	}
}

// Media classes (upnp:class values), as derived from Profile.MediaClass.
const (
	ClassStorageFolder = "object.container.storageFolder"
	ClassAlbum         = "object.container.album"

	ClassImageItem = "object.item.imageItem"
	ClassAudioItem = "object.item.audioItem"
	ClassVideoItem = "object.item.videoItem"
	ClassAVItem    = "object.item.videoItem"
)
