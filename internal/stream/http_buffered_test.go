package stream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bigBody exceeds a single 8192-byte buffer so tests exercise prefetch and
// cross-buffer seeking.
func bigBody() string {
	var sb strings.Builder
	for i := 0; i < bufSize*3; i++ {
		sb.WriteByte(byte('0' + i%10))
	}
	return sb.String()
}

func newFixtureServer(t *testing.T, body string, contentType string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenHTTPBufferedReadsFullBody(t *testing.T) {
	body := bigBody()
	srv := newFixtureServer(t, body, "video/mp4")

	s, err := openHTTPBuffered(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "video/mp4", s.MIMEType())
	assert.Equal(t, int64(len(body)), s.Length())

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestHTTPBufferedSeekWithinActiveBuffer(t *testing.T) {
	body := bigBody()
	srv := newFixtureServer(t, body, "video/mp4")

	s, err := openHTTPBuffered(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	pos, err := s.Seek(10, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)

	b := make([]byte, 5)
	n, err := s.Read(b)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, body[10:15], string(b))
}

func TestHTTPBufferedSeekPastBufferReopens(t *testing.T) {
	body := bigBody()
	srv := newFixtureServer(t, body, "video/mp4")

	s, err := openHTTPBuffered(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	target := int64(bufSize * 2)
	pos, err := s.Seek(target, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, target, pos)

	b := make([]byte, 10)
	n, err := s.Read(b)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, body[target:target+10], string(b))
}

func TestHTTPBufferedSeekEndIsUnsupported(t *testing.T) {
	srv := newFixtureServer(t, "abc", "text/plain")
	s, err := openHTTPBuffered(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(0, SeekEnd)
	assert.ErrorIs(t, err, ErrNotSeekable)
}

func TestHTTPBufferedSeekCurAdvancesFromCurrentPos(t *testing.T) {
	body := bigBody()
	srv := newFixtureServer(t, body, "video/mp4")

	s, err := openHTTPBuffered(srv.URL)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Seek(20, SeekSet)
	require.NoError(t, err)
	pos, err := s.Seek(5, SeekCur)
	require.NoError(t, err)
	assert.Equal(t, int64(25), pos)
}
