package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnasrv/dlna/internal/stream"
)

type fakeStream struct {
	mime      string
	length    int64
	cleanups  int
}

func (s *fakeStream) Read(p []byte) (int, error)                     { return 0, nil }
func (s *fakeStream) Seek(offset int64, whence int) (int64, error)   { return 0, nil }
func (s *fakeStream) Cleanup()                                       { s.cleanups++ }
func (s *fakeStream) Close() error                                   { return nil }
func (s *fakeStream) MIMEType() string                               { return s.mime }
func (s *fakeStream) Length() int64                                  { return s.length }

type fakeOpener struct {
	stream stream.Stream
	err    error
}

func (o fakeOpener) Open(url string) (stream.Stream, error) { return o.stream, o.err }

type recordingProfiler struct {
	mimeTypes []string
	guess     Guess
	ok        bool
}

func (p recordingProfiler) SupportedMIMETypes() []string { return p.mimeTypes }
func (p recordingProfiler) GuessMediaProfile(s stream.Stream) (Guess, bool) {
	return p.guess, p.ok
}
func (p recordingProfiler) GetMediaProfile(id string) (Profile, bool) { return Profile{}, false }

func TestRegistrySkipsProfilerWithMismatchedMIME(t *testing.T) {
	r := NewRegistry()
	r.Register(recordingProfiler{mimeTypes: []string{"audio/mpeg"}, ok: true})
	r.Register(recordingProfiler{mimeTypes: nil, guess: Guess{Profile: Profile{MIME: "video/mp4"}}, ok: true})

	s := &fakeStream{mime: "video/mp4"}
	g, ok := r.GuessMediaProfile(s)
	require.True(t, ok)
	assert.Equal(t, "video/mp4", g.Profile.MIME)
}

func TestRegistryCallsCleanupBetweenProbes(t *testing.T) {
	r := NewRegistry()
	r.Register(recordingProfiler{ok: false})
	r.Register(recordingProfiler{ok: true, guess: Guess{Profile: Profile{MIME: "video/mp4"}}})

	s := &fakeStream{}
	_, ok := r.GuessMediaProfile(s)
	require.True(t, ok)
	assert.Equal(t, 2, s.cleanups)
}

func TestRegistryNoProfilerMatches(t *testing.T) {
	r := NewRegistry()
	r.Register(recordingProfiler{ok: false})
	_, ok := r.GuessMediaProfile(&fakeStream{})
	assert.False(t, ok)
}

func TestNewReturnsErrNoProfile(t *testing.T) {
	r := NewRegistry()
	r.Register(recordingProfiler{ok: false})
	opener := fakeOpener{stream: &fakeStream{length: -1}}

	_, err := New(r, opener, "file:///foo.xyz")
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestNewExtractsPropertiesAndMetadata(t *testing.T) {
	r := NewRegistry()
	r.Register(recordingProfiler{
		ok: true,
		guess: Guess{
			Profile: Profile{
				MIME: "video/mp4",
				Ops: Ops{
					GetProperties: func(s stream.Stream, cookie any) (Properties, error) {
						return Properties{Duration: "00:01:00."}, nil
					},
					GetMetadata: func(s stream.Stream, cookie any) (Metadata, error) {
						var md Metadata
						md.Title.Set("a title")
						return md, nil
					},
				},
			},
		},
	})
	opener := fakeOpener{stream: &fakeStream{length: 1024}}

	item, err := New(r, opener, "file:///foo.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), item.Filesize)

	props, ok := item.Properties.Get()
	require.True(t, ok)
	assert.Equal(t, "00:01:00.", props.Duration)

	md, ok := item.Metadata.Get()
	require.True(t, ok)
	title, ok := md.Title.Get()
	require.True(t, ok)
	assert.Equal(t, "a title", title)
}

func TestNewPropagatesOpenerError(t *testing.T) {
	r := NewRegistry()
	opener := fakeOpener{err: errors.New("connection refused")}
	_, err := New(r, opener, "http://example.com/foo.mp4")
	assert.Error(t, err)
}
