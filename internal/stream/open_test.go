package stream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOpenerDispatchesFileScheme(t *testing.T) {
	path := writeTempFile(t, "hello")
	o := DefaultOpener{ExtensionSniffer: fixedSniffer{mime: "video/mp4", ok: true}}

	s, err := o.Open("file://" + path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "video/mp4", s.MIMEType())
}

func TestDefaultOpenerDispatchesBarePath(t *testing.T) {
	path := writeTempFile(t, "hello")
	o := DefaultOpener{}

	s, err := o.Open(path)
	require.NoError(t, err)
	defer s.Close()
	b, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestDefaultOpenerDispatchesHTTPToBuffered(t *testing.T) {
	srv := newFixtureServer(t, "x", "text/plain")
	o := DefaultOpener{}

	s, err := o.Open(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, isBuffered := s.(*httpBufferedStream)
	assert.True(t, isBuffered)
}

func TestDefaultOpenerDispatchesHTTPToSeekableWhenConfigured(t *testing.T) {
	srv := newFixtureServer(t, "x", "text/plain")
	o := DefaultOpener{SeekableHTTP: true}

	s, err := o.Open(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, isSeekable := s.(*httpSeekableStream)
	assert.True(t, isSeekable)
}

func TestDefaultOpenerRejectsUnknownScheme(t *testing.T) {
	o := DefaultOpener{}
	_, err := o.Open("ftp://example.com/file")
	assert.ErrorIs(t, err, ErrNotFound)
}
