package stream

import "io"

// httpSeekableStream issues a single GET and reads sequentially. Seek
// errors unless the request is a no-op (its target is the current
// position), whether or not the stream's length is known (spec §4.A:
// "seek errors for non-seekable streams").
type httpSeekableStream struct {
	url    string
	res    *httpGetResult
	pos    int64
	length int64
	mime   string
}

func openHTTPSeekable(u string) (Stream, error) {
	res, err := httpGet(u)
	if err != nil {
		return nil, ErrNotFound
	}
	return &httpSeekableStream{url: u, res: res, length: res.contentLength, mime: res.contentType}, nil
}

func (s *httpSeekableStream) Read(p []byte) (int, error) {
	n, err := s.res.body.Read(p)
	s.pos += int64(n)
	return n, err
}

func (s *httpSeekableStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case SeekSet:
		target = offset
	case SeekCur:
		target = s.pos + offset
	case SeekEnd:
		return 0, ErrNotSeekable
	}
	if target == s.pos {
		return s.pos, nil
	}
	return 0, ErrNotSeekable
}

func (s *httpSeekableStream) Cleanup() {}

func (s *httpSeekableStream) Close() error {
	if s.res == nil || s.res.conn == nil {
		return nil
	}
	return s.res.conn.Close()
}

func (s *httpSeekableStream) MIMEType() string { return s.mime }
func (s *httpSeekableStream) Length() int64    { return s.length }

var _ io.Reader = (*httpSeekableStream)(nil)
