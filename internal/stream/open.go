package stream

import (
	"net/url"
	"strings"
)

// DefaultOpener dispatches Open on the URL scheme, selecting one of the
// three backends described in spec §4.A.
type DefaultOpener struct {
	// ExtensionSniffer provides the file backend's MIME guess. Required for
	// file:// URLs to report a MIME type.
	ExtensionSniffer ExtensionSniffer
	// SeekableHTTP selects the simple single-GET HTTP backend instead of
	// the default double-buffered one (spec §4.A: "double-buffered (default
	// for http:)").
	SeekableHTTP bool
}

// Open implements Opener.
func (o DefaultOpener) Open(rawURL string) (Stream, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := rawURL
		if u != nil && u.Scheme == "file" {
			path = u.Path
		}
		return openFile(path, o.ExtensionSniffer)
	}
	if !strings.HasPrefix(u.Scheme, "http") {
		return nil, ErrNotFound
	}
	if o.SeekableHTTP {
		return openHTTPSeekable(rawURL)
	}
	return openHTTPBuffered(rawURL)
}
