package stream

import (
	"os"
)

// fileStream passes reads/seeks straight through to an *os.File. MIME is
// sniffed once at open time via the registered ExtensionSniffer.
type fileStream struct {
	f      *os.File
	path   string
	mime   string
	length int64
}

func openFile(path string, sniffer ExtensionSniffer) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrNotFound
	}
	fi, err := f.Stat()
	length := int64(-1)
	if err == nil {
		length = fi.Size()
	}
	mime := ""
	if sniffer != nil {
		if m, ok := sniffer.SniffExtension(path); ok {
			mime = m
		}
	}
	return &fileStream{f: f, path: path, mime: mime, length: length}, nil
}

// Path exposes the backing filesystem path, implementing profile.PathHinter
// for profilers (e.g. ffprobe) that need to exec an external tool against a
// real path rather than a Stream's byte interface.
func (s *fileStream) Path() (string, bool) { return s.path, true }

func (s *fileStream) Read(p []byte) (int, error)               { return s.f.Read(p) }
func (s *fileStream) Seek(offset int64, whence int) (int64, error) { return s.f.Seek(offset, whence) }
func (s *fileStream) Cleanup()                                 {}
func (s *fileStream) Close() error                              { return s.f.Close() }
func (s *fileStream) MIMEType() string                          { return s.mime }
func (s *fileStream) Length() int64                             { return s.length }
