// Package stream implements the unified random-access byte source over
// file:// and http:// URLs described in spec §4.A: a small Stream interface
// plus three backends (local file, HTTP seekable, HTTP double-buffered).
package stream

import (
	"errors"
	"io"
)

// Whence values for Stream.Seek, matching io.Seeker's.
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// ErrNotSeekable is returned by Seek when the backend cannot honour the
// request (e.g. SeekEnd on an HTTP stream of unknown length).
var ErrNotSeekable = errors.New("stream: not seekable")

// ErrNotFound is returned by Open when no backend can be constructed for a
// URL (spec §4.A).
var ErrNotFound = errors.New("stream: not found")

// Stream is a readable, seekable, self-describing byte source.
type Stream interface {
	io.Reader
	// Seek repositions the read cursor; see SeekSet/SeekCur/SeekEnd.
	Seek(offset int64, whence int) (int64, error)
	// Cleanup resets any probe-only state between profiler attempts,
	// without releasing the underlying connection/descriptor (spec §4.B
	// step 2: "stream.cleanup() between probes").
	Cleanup()
	// Close releases the stream permanently.
	Close() error
	// MIMEType is the backend's best guess at content type, or "" if
	// unknown.
	MIMEType() string
	// Length is the total byte length, or -1 if unknown.
	Length() int64
}

// Opener opens a Stream for a URL, dispatching on scheme (spec §4.A).
type Opener interface {
	Open(url string) (Stream, error)
}

// ExtensionSniffer is consulted by the file backend to guess a MIME type
// from a filename extension, decoupling stream from the profile package
// (which owns the canonical extension table).
type ExtensionSniffer interface {
	SniffExtension(filename string) (mime string, ok bool)
}
