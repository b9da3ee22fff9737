package stream

import (
	"bufio"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"time"
)

// httpGetResult is the parsed response of one raw HTTP/1.0 GET (spec §4.A:
// "GET <path> HTTP/1.0\r\n\r\n", headers parsed case-insensitively).
type httpGetResult struct {
	conn          net.Conn
	body          *bufio.Reader
	contentLength int64 // -1 if absent
	contentType   string
}

const maxRedirects = 5

// httpGet performs a one-shot GET, following Location redirects up to
// maxRedirects deep.
func httpGet(rawURL string) (*httpGetResult, error) {
	for i := 0; i < maxRedirects; i++ {
		res, location, err := httpGetOnce(rawURL)
		if err != nil {
			return nil, err
		}
		if location == "" {
			return res, nil
		}
		res.conn.Close()
		rawURL = location
	}
	return nil, fmt.Errorf("stream: too many redirects fetching %s", rawURL)
}

func httpGetOnce(rawURL string) (res *httpGetResult, location string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", err
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}
	conn, err := net.DialTimeout("tcp", host, 10*time.Second)
	if err != nil {
		return nil, "", err
	}
	path := u.RequestURI()
	if path == "" {
		path = "/"
	}
	req := fmt.Sprintf("GET %s HTTP/1.0\r\nHost: %s\r\n\r\n", path, u.Hostname())
	if _, err := conn.Write([]byte(req)); err != nil {
		conn.Close()
		return nil, "", err
	}
	br := bufio.NewReader(conn)
	statusLine, err := br.ReadString('\n')
	if err != nil {
		conn.Close()
		return nil, "", err
	}
	_ = statusLine // status code isn't consulted; header fields drive behaviour
	tp := textproto.NewReader(br)
	header, err := tp.ReadMIMEHeader()
	if err != nil && header == nil {
		conn.Close()
		return nil, "", err
	}
	if loc := header.Get("Location"); loc != "" {
		conn.Close()
		resolved, err := u.Parse(loc)
		if err != nil {
			return nil, "", err
		}
		return nil, resolved.String(), nil
	}
	length := int64(-1)
	if cl := header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			length = n
		}
	}
	return &httpGetResult{
		conn:          conn,
		body:          br,
		contentLength: length,
		contentType:   header.Get("Content-Type"),
	}, "", nil
}
