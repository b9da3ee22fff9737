// Package resource implements the protocol/resource layer (spec §4.C):
// per-item transport URL synthesis and protocolInfo generation, pluggable
// per transport. HTTP-GET is the only built-in transport.
package resource

import (
	"fmt"
	"net/url"

	"github.com/dlnasrv/dlna/dlna"
	"github.com/dlnasrv/dlna/internal/profile"
)

// ProtocolInfo is the 4-field protocolInfo tuple: protocol:network:mime:other.
type ProtocolInfo struct {
	Protocol string
	Network  string
	MIME     string
	Other    string // "*" when absent
}

// String renders the colon-joined protocolInfo string.
func (pi ProtocolInfo) String() string {
	other := pi.Other
	if other == "" {
		other = "*"
	}
	return fmt.Sprintf("%s:%s:%s:%s", pi.Protocol, pi.Network, pi.MIME, other)
}

// Info is the (protocol-id, speed, conversion, operation) tuple used to
// compose the per-response DLNA.ORG_PS/CI/OP fields.
type Info struct {
	ProtocolID string
	Speed      string
	Conversion bool
	// SupportsTimeSeek/SupportsByteRange drive the OP field.
	SupportsTimeSeek  bool
	SupportsByteRange bool
}

// Resource is one transport binding for a MediaItem: its URL function, the
// protocolInfo that advertises it, a size snapshot and the Properties
// snapshot taken at insertion time (spec §4.C).
type Resource struct {
	URLFunc    func(host string, virtualDir string) string
	ProtocolInfo ProtocolInfo
	Size       int64
	Properties profile.Properties
	Info       Info
}

// URL renders the resource's transport URL for the given host/virtual dir.
func (r Resource) URL(host, virtualDir string) string {
	return r.URLFunc(host, virtualDir)
}

// Protocol is a pluggable transport (spec §4.C): http-get is the only
// built-in implementation.
type Protocol interface {
	Name() string // e.g. "http-get"
	Net() string  // usually "*"
	CreateResource(item *profile.MediaItem, id uint32) Resource
	// Init registers any HTTP path handlers the protocol needs against the
	// virtual directory installer.
	Init(install func(pattern string, handler any))
}

// DLNAOther composes the DLNA.ORG_* "other" field for a protocolInfo in
// DLNA mode (spec §4.C): "DLNA.ORG_PN=<id>;DLNA.ORG_FLAGS=<hex32+24x0>".
func DLNAOther(profileID string, timeSeek, byteRange bool) string {
	return dlna.ContentFeatures{
		ProfileName:     profileID,
		SupportTimeSeek: timeSeek,
		SupportRange:    byteRange,
	}.String()
}

// HTTPGetProtocol is the built-in "http-get" transport: it serves resources
// from the device's own /web/<id> virtual directory (spec §6).
type HTTPGetProtocol struct {
	// VirtualDir is the path prefix resources are served under, e.g. "/web".
	VirtualDir string
	// Host is the advertised host:port; set by the device layer once the
	// HTTP listener's port is known.
	Host func() string
}

func (HTTPGetProtocol) Name() string { return "http-get" }
func (HTTPGetProtocol) Net() string  { return "*" }

func (p HTTPGetProtocol) CreateResource(item *profile.MediaItem, id uint32) Resource {
	ext := item.Profile.Extension
	size := item.Filesize
	return Resource{
		URLFunc: func(host, virtualDir string) string {
			u := url.URL{
				Scheme: "http",
				Host:   host,
				Path:   fmt.Sprintf("%s/%d%s", virtualDir, id, ext),
			}
			return u.String()
		},
		ProtocolInfo: ProtocolInfo{
			Protocol: "http-get",
			Network:  "*",
			MIME:     item.Profile.MIME,
		},
		Size: size,
		Info: Info{
			ProtocolID:        "http-get",
			Speed:             "1",
			SupportsTimeSeek:  item.Profile.SupportsTimeSeek,
			SupportsByteRange: item.Profile.SupportsByteRange,
		},
	}
}

func (HTTPGetProtocol) Init(install func(pattern string, handler any)) {}
