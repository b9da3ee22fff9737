package stream

import (
	"io"
)

// bufSize is the fixed size of each of the two read-ahead buffers (spec
// §4.A: "two fixed buffers (8192 bytes each)").
const bufSize = 8192

// fillThreshold is the fraction of the active buffer that must be consumed
// before the background buffer is filled (spec §4.A: "crosses a 90%
// threshold").
const fillThreshold = 0.9

type dbBuffer struct {
	data  [bufSize]byte
	n     int   // valid bytes in data
	base  int64 // absolute stream offset of data[0]
	valid bool
}

// httpBufferedStream is the default http: backend: two fixed buffers with
// read-ahead prefetching of the next chunk, and seek implemented by
// reopening the connection and discarding bytes up to the target (spec
// §4.A).
type httpBufferedStream struct {
	url    string
	res    *httpGetResult
	length int64
	mime   string

	bufs   [2]dbBuffer
	active int // index into bufs of the buffer currently being read
	relPos int // read cursor within bufs[active].data

	streamPos int64 // absolute offset of the next byte httpGet would yield
}

func openHTTPBuffered(u string) (Stream, error) {
	s := &httpBufferedStream{url: u}
	if err := s.reopen(0); err != nil {
		return nil, ErrNotFound
	}
	return s, nil
}

// reopen issues a fresh GET and discards bytes up to skip, in buffer-sized
// chunks, then fills both buffers starting at that offset.
func (s *httpBufferedStream) reopen(skip int64) error {
	if s.res != nil && s.res.conn != nil {
		s.res.conn.Close()
	}
	res, err := httpGet(s.url)
	if err != nil {
		return err
	}
	s.res = res
	s.length = res.contentLength
	s.mime = res.contentType
	s.streamPos = 0
	s.bufs[0] = dbBuffer{}
	s.bufs[1] = dbBuffer{}
	s.active = 0
	s.relPos = 0

	discard := make([]byte, bufSize)
	for skip > 0 {
		chunk := int64(bufSize)
		if skip < chunk {
			chunk = skip
		}
		n, rerr := io.ReadFull(s.res.body, discard[:chunk])
		s.streamPos += int64(n)
		skip -= int64(n)
		if rerr != nil {
			if rerr == io.ErrUnexpectedEOF || rerr == io.EOF {
				break
			}
			return rerr
		}
	}
	return s.fillBuffer(0)
}

func (s *httpBufferedStream) fillBuffer(idx int) error {
	b := &s.bufs[idx]
	b.base = s.streamPos
	n, err := io.ReadFull(s.res.body, b.data[:])
	b.n = n
	s.streamPos += int64(n)
	b.valid = n > 0
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return err
	}
	return nil
}

func (s *httpBufferedStream) background() int { return 1 - s.active }

// maybePrefetch fills the background buffer once the read cursor has
// crossed the fill threshold of the active buffer.
func (s *httpBufferedStream) maybePrefetch() {
	ab := &s.bufs[s.active]
	if ab.n == 0 {
		return
	}
	bg := &s.bufs[s.background()]
	if bg.valid {
		return
	}
	if float64(s.relPos) >= fillThreshold*float64(ab.n) {
		_ = s.fillBuffer(s.background())
	}
}

func (s *httpBufferedStream) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		ab := &s.bufs[s.active]
		if !ab.valid || s.relPos >= ab.n {
			bg := &s.bufs[s.background()]
			if !bg.valid {
				if err := s.fillBuffer(s.background()); err != nil {
					return total, err
				}
				bg = &s.bufs[s.background()]
				if !bg.valid {
					if total > 0 {
						return total, nil
					}
					return 0, io.EOF
				}
			}
			ab.valid = false
			s.active = s.background()
			s.relPos = 0
			ab = &s.bufs[s.active]
		}
		n := copy(p[total:], ab.data[s.relPos:ab.n])
		s.relPos += n
		total += n
		s.maybePrefetch()
		if n == 0 {
			break
		}
	}
	return total, nil
}

func (s *httpBufferedStream) currentPos() int64 {
	return s.bufs[s.active].base + int64(s.relPos)
}

func (s *httpBufferedStream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case SeekEnd:
		return 0, ErrNotSeekable
	case SeekSet:
		return s.seekAbsolute(offset)
	case SeekCur:
		return s.seekAbsolute(s.currentPos() + offset)
	}
	return 0, ErrNotSeekable
}

// seekAbsolute slides within the two-buffer window when the target falls
// inside it, otherwise resets by reopening the connection (spec §4.A).
func (s *httpBufferedStream) seekAbsolute(target int64) (int64, error) {
	if target < 0 {
		return 0, ErrNotSeekable
	}
	ab := &s.bufs[s.active]
	if ab.valid && target >= ab.base && target < ab.base+int64(ab.n) {
		s.relPos = int(target - ab.base)
		return target, nil
	}
	bg := &s.bufs[s.background()]
	if bg.valid && target >= bg.base && target < bg.base+int64(bg.n) {
		s.active = s.background()
		s.relPos = int(target - bg.base)
		return target, nil
	}
	if err := s.reopen(target); err != nil {
		return 0, err
	}
	return target, nil
}

func (s *httpBufferedStream) Cleanup() {}

func (s *httpBufferedStream) Close() error {
	if s.res == nil || s.res.conn == nil {
		return nil
	}
	return s.res.conn.Close()
}

func (s *httpBufferedStream) MIMEType() string { return s.mime }
func (s *httpBufferedStream) Length() int64    { return s.length }
