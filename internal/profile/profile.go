// Package profile implements the Media Profiler Registry (spec §4.B): an
// ordered chain of profilers that, given a stream, identify a DLNA profile
// and extract its properties/metadata.
package profile

import (
	"fmt"

	"github.com/anacrolix/generics"

	"github.com/dlnasrv/dlna/internal/stream"
)

// MediaClass categorises a Profile the way DLNA/UPnP-AV does.
type MediaClass int

const (
	ClassUnknown MediaClass = iota
	ClassImage
	ClassAudio
	ClassAV
)

// Properties is the set of stream-derived technical properties a profiler
// may fill in (spec §3).
type Properties struct {
	Duration        string // "HH:MM:SS."
	Bitrate         uint
	SampleFrequency uint
	BitsPerSample   uint
	SamplesPerFrame uint
	Channels        uint
	Resolution      string // "WxH"
}

// Metadata is the set of descriptive tags a profiler may fill in (spec §3).
type Metadata struct {
	Title   generics.Option[string]
	Author  generics.Option[string]
	Comment generics.Option[string]
	Album   generics.Option[string]
	Track   generics.Option[int]
	Genre   generics.Option[string]
}

// Profile describes one recognised DLNA profile: its identity (id/MIME/
// class) plus the operations a profiler implementation performs against a
// stream carrying that profile. Cookie is opaque, profiler-specific state
// threaded back into every call (spec §3's "function pointer" group,
// modelled as a capability interface per §9).
type Profile struct {
	ID         string
	MIME       string
	Label      string
	MediaClass MediaClass
	Extension  string
	// SupportsTimeSeek/SupportsByteRange feed dlna.ContentFeatures.
	SupportsTimeSeek   bool
	SupportsByteRange  bool
	Ops Ops
}

// Ops is the capability set a Profile exposes for a concrete stream
// instance. A nil method means that operation is unsupported for this
// profile (e.g. an extension-only guess with no properties/metadata).
type Ops struct {
	GetProperties func(s stream.Stream, cookie any) (Properties, error)
	GetMetadata   func(s stream.Stream, cookie any) (Metadata, error)
}

// Guess is what a Profiler returns when it recognises a stream: the
// matched Profile plus an opaque, profiler-private cookie carried forward
// into Ops calls (and stored on the MediaItem).
type Guess struct {
	Profile Profile
	Cookie  any
}

// Profiler is implemented by each pluggable prober in the registry chain.
type Profiler interface {
	// SupportedMIMETypes lists the finite set of MIME types this profiler
	// may recognise. An empty/nil list means "try regardless of sniffed
	// MIME" (used by fallback profilers).
	SupportedMIMETypes() []string
	// GuessMediaProfile inspects the stream and returns a Guess if it
	// recognises the content, or !ok if not.
	GuessMediaProfile(s stream.Stream) (g Guess, ok bool)
	// GetMediaProfile looks a profile up by id, for cases (e.g. a cached
	// MediaItem) where only the id string survived.
	GetMediaProfile(id string) (Profile, bool)
}

// Registry is an ordered chain of Profilers, consulted in registration
// order (spec §4.B step 2).
type Registry struct {
	profilers []Profiler
}

// NewRegistry builds an empty registry. Register profilers with Register in
// the order they should be tried; put narrow, high-confidence profilers
// first and universal fallbacks (like the extension table) last.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(p Profiler) {
	r.profilers = append(r.profilers, p)
}

func mimeSupported(p Profiler, mime string) bool {
	types := p.SupportedMIMETypes()
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == mime {
			return true
		}
	}
	return false
}

// GuessMediaProfile runs the registered profilers over s in order, skipping
// any whose SupportedMIMETypes doesn't include s's sniffed MIME (when that
// MIME is known), and calling s.Cleanup() between probes (spec §4.B step 2).
func (r *Registry) GuessMediaProfile(s stream.Stream) (Guess, bool) {
	mime := s.MIMEType()
	for _, p := range r.profilers {
		if mime != "" && !mimeSupported(p, mime) {
			continue
		}
		g, ok := p.GuessMediaProfile(s)
		s.Cleanup()
		if ok {
			return g, true
		}
	}
	return Guess{}, false
}

// GetMediaProfile looks up a profile by id across every registered
// profiler.
func (r *Registry) GetMediaProfile(id string) (Profile, bool) {
	for _, p := range r.profilers {
		if prof, ok := p.GetMediaProfile(id); ok {
			return prof, true
		}
	}
	return Profile{}, false
}

// MediaItem is the durable, profiler-agnostic description of a playable
// resource (spec §3): what stream backs it, which profile it was
// identified as, and the properties/metadata extracted at insertion time.
type MediaItem struct {
	URL        string
	Filesize   int64 // -1 if unknown
	ProfileID  string
	Properties generics.Option[Properties]
	Metadata   generics.Option[Metadata]
	Profile    Profile
	Cookie     any
}

// ErrNoProfile is returned by New when no registered profiler recognises
// the stream (spec §7's ProfilerError, S5).
var ErrNoProfile = fmt.Errorf("profile: no profiler recognised the stream")

// New implements dlna_item_new (spec §4.B): opens url, runs it through the
// registry, and on success extracts Properties/Metadata via the winning
// profile's Ops.
func New(registry *Registry, opener stream.Opener, url string) (*MediaItem, error) {
	s, err := opener.Open(url)
	if err != nil {
		return nil, fmt.Errorf("profile: opening stream: %w", err)
	}
	defer s.Close()

	guess, ok := registry.GuessMediaProfile(s)
	if !ok {
		return nil, ErrNoProfile
	}

	item := &MediaItem{
		URL:       url,
		Filesize:  -1,
		ProfileID: guess.Profile.ID,
		Profile:   guess.Profile,
		Cookie:    guess.Cookie,
	}
	if l := s.Length(); l >= 0 {
		item.Filesize = l
	}

	if guess.Profile.Ops.GetProperties != nil {
		props, err := guess.Profile.Ops.GetProperties(s, guess.Cookie)
		if err == nil {
			item.Properties.Set(props)
		}
	}
	if guess.Profile.Ops.GetMetadata != nil {
		md, err := guess.Profile.Ops.GetMetadata(s, guess.Cookie)
		if err == nil {
			item.Metadata.Set(md)
		}
	}
	return item, nil
}
