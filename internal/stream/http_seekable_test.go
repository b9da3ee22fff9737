package stream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenHTTPSeekableReadsSequentially(t *testing.T) {
	srv := newFixtureServer(t, "abcdefghij", "audio/mpeg")

	s, err := openHTTPSeekable(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "audio/mpeg", s.MIMEType())
	assert.Equal(t, int64(10), s.Length())

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", string(got))
}

func TestHTTPSeekableNoOpSeekSucceeds(t *testing.T) {
	srv := newFixtureServer(t, "abcdef", "audio/mpeg")
	s, err := openHTTPSeekable(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	pos, err := s.Seek(0, SeekCur)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestHTTPSeekableRealSeekFails(t *testing.T) {
	srv := newFixtureServer(t, "abcdef", "audio/mpeg")
	s, err := openHTTPSeekable(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(3, SeekSet)
	assert.ErrorIs(t, err, ErrNotSeekable)
}

func TestHTTPSeekableSeekEndFails(t *testing.T) {
	srv := newFixtureServer(t, "abcdef", "audio/mpeg")
	s, err := openHTTPSeekable(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(0, SeekEnd)
	assert.ErrorIs(t, err, ErrNotSeekable)
}
