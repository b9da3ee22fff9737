package stream

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSniffer struct {
	mime string
	ok   bool
}

func (s fixedSniffer) SniffExtension(filename string) (string, bool) { return s.mime, s.ok }

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mp4")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenFileReadsContentAndLength(t *testing.T) {
	path := writeTempFile(t, "hello world")
	s, err := openFile(path, fixedSniffer{mime: "video/mp4", ok: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, int64(11), s.Length())
	assert.Equal(t, "video/mp4", s.MIMEType())

	b, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(b))
}

func TestOpenFileMissingReturnsErrNotFound(t *testing.T) {
	_, err := openFile("/no/such/file/here", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFileWithoutSnifferHasNoMIME(t *testing.T) {
	path := writeTempFile(t, "x")
	s, err := openFile(path, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "", s.MIMEType())
}

func TestOpenFileSeeksWithinFile(t *testing.T) {
	path := writeTempFile(t, "0123456789")
	s, err := openFile(path, nil)
	require.NoError(t, err)
	defer s.Close()

	pos, err := s.Seek(5, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	b := make([]byte, 2)
	n, err := s.Read(b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "56", string(b))
}

func TestFileStreamPathHinterExposesRealPath(t *testing.T) {
	path := writeTempFile(t, "x")
	s, err := openFile(path, nil)
	require.NoError(t, err)
	defer s.Close()

	hinter, ok := s.(interface{ Path() (string, bool) })
	require.True(t, ok)
	p, ok := hinter.Path()
	assert.True(t, ok)
	assert.Equal(t, path, p)
}
