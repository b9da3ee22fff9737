package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeHintedStream struct {
	path string
}

func (f fakeHintedStream) Path() (string, bool)                     { return f.path, true }
func (f fakeHintedStream) Read(p []byte) (int, error)                { return 0, nil }
func (f fakeHintedStream) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (f fakeHintedStream) Cleanup()                                  {}
func (f fakeHintedStream) Close() error                              { return nil }
func (f fakeHintedStream) MIMEType() string                          { return "" }
func (f fakeHintedStream) Length() int64                             { return -1 }

func TestExtensionProfilerRecognisesKnownExtension(t *testing.T) {
	p := ExtensionProfiler{}
	g, ok := p.GuessMediaProfile(fakeHintedStream{path: "/movies/foo.MP4"})
	assert.True(t, ok)
	assert.Equal(t, "video/mp4", g.Profile.MIME)
	assert.Equal(t, ClassAV, g.Profile.MediaClass)
	assert.True(t, g.Profile.SupportsByteRange)
}

func TestExtensionProfilerUnknownExtension(t *testing.T) {
	p := ExtensionProfiler{}
	_, ok := p.GuessMediaProfile(fakeHintedStream{path: "/movies/foo.xyz"})
	assert.False(t, ok)
}

func TestExtensionProfilerGetMediaProfileByID(t *testing.T) {
	p := ExtensionProfiler{}
	prof, ok := p.GetMediaProfile("MP3")
	assert.True(t, ok)
	assert.Equal(t, "audio/mpeg", prof.MIME)
}

func TestExtensionProfilerSniffExtension(t *testing.T) {
	p := ExtensionProfiler{}
	mime, ok := p.SniffExtension("video.mkv")
	assert.True(t, ok)
	assert.Equal(t, "video/x-matroska", mime)

	_, ok = p.SniffExtension("video.unknownext")
	assert.False(t, ok)
}
