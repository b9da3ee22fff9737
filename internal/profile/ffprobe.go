package profile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anacrolix/ffprobe"
	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/internal/stream"
)

// FFProbeCache lets a caller persist probe results keyed by file path so
// repeated Browse calls over the same library don't re-exec ffprobe per
// file. The key does not include the modification time.
type FFProbeCache interface {
	Get(key any) (any, bool)
	Set(key any, value any)
}

// NopFFProbeCache never caches; used when no cache is configured.
type NopFFProbeCache struct{}

func (NopFFProbeCache) Get(any) (any, bool) { return nil, false }
func (NopFFProbeCache) Set(any, any)        {}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true}

// FFProbeProfiler recognises audio/video files by running ffprobe over a
// local path, extracting Properties/Metadata from its Format and Streams
// tag maps.
type FFProbeProfiler struct {
	Cache  FFProbeCache
	Logger log.Logger
}

func (p *FFProbeProfiler) cache() FFProbeCache {
	if p.Cache == nil {
		return NopFFProbeCache{}
	}
	return p.Cache
}

func (FFProbeProfiler) SupportedMIMETypes() []string { return nil }

func (p *FFProbeProfiler) GuessMediaProfile(s stream.Stream) (Guess, bool) {
	hinter, ok := s.(interface{ Path() (string, bool) })
	if !ok {
		return Guess{}, false
	}
	path, ok := hinter.Path()
	if !ok {
		return Guess{}, false
	}
	ext := strings.ToLower(filepath.Ext(path))
	if imageExtensions[ext] {
		return Guess{}, false
	}

	info, err := p.probe(path)
	if err != nil {
		p.Logger.Levelf(log.Debug, "profile: ffprobe %s: %v", path, err)
		return Guess{}, false
	}

	class, mime := classify(info, ext)
	if class == ClassUnknown {
		return Guess{}, false
	}

	profile := Profile{
		MIME:              mime,
		Label:             strings.TrimPrefix(ext, "."),
		MediaClass:        class,
		Extension:         ext,
		SupportsTimeSeek:  class == ClassAV,
		SupportsByteRange: true,
		Ops: Ops{
			GetProperties: getProperties,
			GetMetadata:   getMetadata,
		},
	}
	return Guess{Profile: profile, Cookie: info}, true
}

func (FFProbeProfiler) GetMediaProfile(string) (Profile, bool) { return Profile{}, false }

func (p *FFProbeProfiler) probe(path string) (*ffprobe.Info, error) {
	key := path
	if v, ok := p.cache().Get(key); ok {
		if info, ok := v.(*ffprobe.Info); ok {
			return info, nil
		}
	}
	info, err := ffprobe.Run(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	p.cache().Set(key, info)
	return info, nil
}

func classify(info *ffprobe.Info, ext string) (MediaClass, string) {
	hasVideo, hasAudio := false, false
	for _, st := range info.Streams {
		switch tagString(st, "codec_type") {
		case "video":
			hasVideo = true
		case "audio":
			hasAudio = true
		}
	}
	switch {
	case hasVideo:
		return ClassAV, "video/" + strings.TrimPrefix(ext, ".")
	case hasAudio:
		return ClassAudio, "audio/" + strings.TrimPrefix(ext, ".")
	default:
		return ClassUnknown, ""
	}
}

func tagString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func getProperties(s stream.Stream, cookie any) (Properties, error) {
	info, ok := cookie.(*ffprobe.Info)
	if !ok {
		return Properties{}, fmt.Errorf("profile: ffprobe cookie missing")
	}
	var props Properties
	if d, err := info.Duration(); err == nil {
		props.Duration = formatDuration(d.Seconds())
	}
	if br := tagString(info.Format, "bit_rate"); br != "" {
		if n, err := strconv.Atoi(br); err == nil {
			props.Bitrate = uint(n)
		}
	}
	for _, st := range info.Streams {
		if tagString(st, "codec_type") == "video" {
			w := tagString(st, "width")
			h := tagString(st, "height")
			if w != "" && h != "" {
				props.Resolution = w + "x" + h
			}
		}
		if tagString(st, "codec_type") == "audio" {
			if ch := tagString(st, "channels"); ch != "" {
				if n, err := strconv.Atoi(ch); err == nil {
					props.Channels = uint(n)
				}
			}
			if sr := tagString(st, "sample_rate"); sr != "" {
				if n, err := strconv.Atoi(sr); err == nil {
					props.SampleFrequency = uint(n)
				}
			}
		}
	}
	return props, nil
}

func getMetadata(s stream.Stream, cookie any) (Metadata, error) {
	info, ok := cookie.(*ffprobe.Info)
	if !ok {
		return Metadata{}, fmt.Errorf("profile: ffprobe cookie missing")
	}
	var md Metadata
	apply := func(m map[string]any) {
		for key, v := range m {
			val, ok := v.(string)
			if !ok {
				continue
			}
			switch strings.ToLower(key) {
			case "tag:artist":
				if _, ok := md.Author.Get(); !ok {
					md.Author.Set(val)
				}
			case "tag:album":
				if _, ok := md.Album.Get(); !ok {
					md.Album.Set(val)
				}
			case "tag:genre":
				if _, ok := md.Genre.Get(); !ok {
					md.Genre.Set(val)
				}
			case "tag:title":
				if _, ok := md.Title.Get(); !ok {
					md.Title.Set(val)
				}
			case "tag:track":
				if _, ok := md.Track.Get(); !ok {
					if n, err := strconv.Atoi(strings.SplitN(val, "/", 2)[0]); err == nil {
						md.Track.Set(n)
					}
				}
			}
		}
	}
	apply(info.Format)
	for _, st := range info.Streams {
		apply(st)
	}
	return md, nil
}

func formatDuration(seconds float64) string {
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d.", h, m, s)
}
