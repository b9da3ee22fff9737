package vfstree

import (
	"encoding/xml"
	"fmt"

	"github.com/dlnasrv/dlna/internal/profile"
	"github.com/dlnasrv/dlna/upnpav"
)

// classFor maps a profile.MediaClass to its upnp:class string (spec §3).
func classFor(c profile.MediaClass) string {
	switch c {
	case profile.ClassImage:
		return upnpav.ClassImageItem
	case profile.ClassAudio:
		return upnpav.ClassAudioItem
	case profile.ClassAV:
		return upnpav.ClassAVItem
	default:
		return upnpav.ClassAVItem
	}
}

func containerClassFor(c ContainerClass) string {
	if c == ClassCollection {
		return upnpav.ClassAlbum
	}
	return upnpav.ClassStorageFolder
}

// toDIDLContainer renders a Container object, honouring filter for the
// optional childCount/searchable attributes (spec §4.D).
func (t *Tree) toDIDLContainer(o *Object, f Filter) upnpav.Container {
	parentID, _ := o.parentID()
	c := upnpav.Container{
		Object: upnpav.Object{
			ID:         fmt.Sprint(o.ID),
			ParentID:   fmt.Sprint(parentID),
			Restricted: 1,
			Class:      containerClassFor(o.Container.MediaClass),
			Title:      o.Container.Title,
		},
		Searchable: 1,
	}
	if f.Has("childCount") {
		c.ChildCount = len(o.Container.Children)
	}
	return c
}

// toDIDLItem renders a Resource object, honouring filter for optional
// dc:/upnp: metadata and per-resource @-attributes (spec §4.D).
func (t *Tree) toDIDLItem(o *Object, f Filter) upnpav.Item {
	ro := o.Resource
	item := upnpav.Item{
		Object: upnpav.Object{
			ID:         fmt.Sprint(o.ID),
			ParentID:   fmt.Sprint(ro.ParentID),
			Restricted: 1,
			Class:      classFor(ro.Item.Profile.MediaClass),
			Title:      ro.Title,
		},
	}

	if md, ok := ro.Item.Metadata.Get(); ok {
		if f.Has("dc:creator") {
			if v, ok := md.Author.Get(); ok {
				item.Creator = v
			}
		}
		if f.Has("upnp:artist") {
			if v, ok := md.Author.Get(); ok {
				item.Artist = v
			}
		}
		if f.Has("dc:description") {
			if v, ok := md.Comment.Get(); ok {
				item.Description = v
			}
		}
		if f.Has("upnp:album") {
			if v, ok := md.Album.Get(); ok {
				item.Album = v
			}
		}
		if f.Has("upnp:genre") {
			if v, ok := md.Genre.Get(); ok {
				item.Genre = v
			}
		}
		if f.Has("upnp:originalTrackNumber") {
			if v, ok := md.Track.Get(); ok {
				item.OriginalTrackNo = v
			}
		}
	}

	// res itself is always emitted; the filter only gates its sub-attributes.
	for _, r := range ro.Resources {
		res := upnpav.Resource{
			ProtocolInfo: r.ProtocolInfo.String(),
			URL:          r.URL(t.hostAddr(), t.virtualDir),
		}
		if r.Size > 0 {
			res.Size = uint64(r.Size)
		}
		if f.Has("res@duration") && r.Properties.Duration != "" {
			res.Duration = r.Properties.Duration
		}
		if f.Has("res@resolution") && r.Properties.Resolution != "" {
			res.Resolution = r.Properties.Resolution
		}
		if f.Has("res@bitrate") {
			res.Bitrate = r.Properties.Bitrate
		}
		if f.Has("res@sampleFrequency") {
			res.SampleFrequency = r.Properties.SampleFrequency
		}
		if f.Has("res@bitsPerSample") {
			res.BitsPerSample = r.Properties.BitsPerSample
		}
		if f.Has("res@nrAudioChannels") {
			res.NrAudioChannels = r.Properties.Channels
		}
		item.Res = append(item.Res, res)
	}
	return item
}

// marshalDIDL wraps objs in a DIDL-Lite envelope and marshals it, matching
// the exact XML escaping guarantees of Testable Property 7 (via
// encoding/xml struct-tag marshalling, never string concatenation).
func marshalDIDL(containers []upnpav.Container, items []upnpav.Item) (string, error) {
	d := upnpav.NewDIDLLite()
	d.Containers = containers
	d.Items = items
	b, err := xml.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
