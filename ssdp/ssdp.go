// Package ssdp implements the SSDP (Simple Service Discovery Protocol)
// half of the UPnP wire stack: multicast M-SEARCH responses and periodic
// ssdp:alive NOTIFY announcements for a single root device and its embedded
// service types, on one network interface.
package ssdp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/anacrolix/log"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

// reuseAddrListenConfig lets multiple Server instances (one per interface)
// bind the same multicast port, which net.ListenPacket alone refuses.
var reuseAddrListenConfig = net.ListenConfig{
	Control: func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if err != nil {
			return err
		}
		return sockErr
	},
}

// Multicast group addresses SSDP operates on: IPv4 and the two IPv6 scopes
// UPnP devices commonly advertise to (link-local and site-local).
const (
	AddrString    = "239.255.255.250:1900"
	AddrString6LL = "[ff02::c]:1900"
	AddrString6SL = "[ff05::c]:1900"
)

// AddrString2NetAdd maps an SSDP multicast address string to the Go network
// name ("udp4"/"udp6") used to dial/listen on it.
var AddrString2NetAdd = map[string]string{
	AddrString:    "udp4",
	AddrString6LL: "udp6",
	AddrString6SL: "udp6",
}

const ssdpAll = "ssdp:all"

// Server runs SSDP for one device on one network interface.
type Server struct {
	Interface net.Interface
	// AddrString is one of the constants above.
	AddrString string
	// NetAddr is AddrString2NetAdd[AddrString].
	NetAddr string

	// Devices and Services are the full URN lists this root device
	// advertises (the outer device type, plus each embedded service type).
	Devices  []string
	Services []string

	// Location, given the advertising interface's IP, returns the device
	// description URL to advertise.
	Location func(ip net.IP) string
	Server   string
	UUID     string

	// NotifyInterval is how often ssdp:alive announcements repeat. Zero
	// selects a default.
	NotifyInterval time.Duration

	Logger log.Logger

	conn   net.PacketConn
	ifIP   net.IP
	closed chan struct{}
}

// usns enumerates every (NT, USN) pair this root device answers to: the
// root device itself, the UUID alone, and every device/service type.
func (s *Server) usns() (nts []string, usns []string) {
	nts = append(nts, "upnp:rootdevice")
	usns = append(usns, "uuid:"+s.UUID+"::upnp:rootdevice")
	nts = append(nts, "uuid:"+s.UUID)
	usns = append(usns, "uuid:"+s.UUID)
	for _, d := range s.Devices {
		nts = append(nts, d)
		usns = append(usns, "uuid:"+s.UUID+"::"+d)
	}
	for _, svc := range s.Services {
		nts = append(nts, svc)
		usns = append(usns, "uuid:"+s.UUID+"::"+svc)
	}
	return
}

func (s *Server) interfaceIP() (net.IP, error) {
	addrs, err := s.Interface.Addrs()
	if err != nil {
		return nil, err
	}
	wantV6 := s.NetAddr == "udp6"
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		is4 := ipn.IP.To4() != nil
		if wantV6 == is4 {
			continue
		}
		return ipn.IP, nil
	}
	return nil, fmt.Errorf("ssdp: no usable address on %s", s.Interface.Name)
}

// Init opens the multicast listening socket for Interface/AddrString.
func (s *Server) Init() (err error) {
	if s.NotifyInterval == 0 {
		s.NotifyInterval = 30 * time.Second
	}
	if s.NetAddr == "" {
		s.NetAddr = AddrString2NetAdd[s.AddrString]
	}
	s.ifIP, err = s.interfaceIP()
	if err != nil {
		return err
	}
	conn, err := reuseAddrListenConfig.ListenPacket(context.Background(), s.NetAddr, s.udpListenAddr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if s.NetAddr == "udp4" {
		pc := ipv4.NewPacketConn(conn)
		group, _ := net.ResolveUDPAddr("udp4", s.AddrString)
		if err := pc.JoinGroup(&s.Interface, group); err != nil {
			conn.Close()
			return fmt.Errorf("joining ipv4 multicast group: %w", err)
		}
		_ = pc.SetMulticastInterface(&s.Interface)
		_ = pc.SetMulticastLoopback(false)
	} else {
		pc := ipv6.NewPacketConn(conn)
		group, _ := net.ResolveUDPAddr("udp6", s.AddrString)
		if err := pc.JoinGroup(&s.Interface, group); err != nil {
			conn.Close()
			return fmt.Errorf("joining ipv6 multicast group: %w", err)
		}
		_ = pc.SetMulticastInterface(&s.Interface)
		_ = pc.SetMulticastLoopback(false)
	}
	s.conn = conn
	s.closed = make(chan struct{})
	return nil
}

func (s *Server) udpListenAddr() string {
	if s.NetAddr == "udp4" {
		return ":1900"
	}
	return ":1900"
}

// Serve answers M-SEARCH requests and periodically announces ssdp:alive
// until Close is called.
func (s *Server) Serve() error {
	go s.notifyLoop()
	buf := make([]byte, 2048)
	for {
		n, addr, err := s.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
				return err
			}
		}
		req, err := http.ReadRequest(bufio.NewReader(strings.NewReader(string(buf[:n]) + "\r\n")))
		if err != nil || req.Method != "M-SEARCH" {
			continue
		}
		go s.respond(addr, req.Header.Get("ST"))
	}
}

func (s *Server) respond(addr net.Addr, st string) {
	nts, usns := s.usns()
	for i, nt := range nts {
		if st != ssdpAll && st != nt {
			continue
		}
		msg := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
			"CACHE-CONTROL: max-age=%d\r\n"+
			"EXT:\r\n"+
			"LOCATION: %s\r\n"+
			"SERVER: %s\r\n"+
			"ST: %s\r\n"+
			"USN: %s\r\n\r\n",
			2*int(s.NotifyInterval/time.Second), s.Location(s.ifIP), s.Server, nt, usns[i])
		if _, err := s.conn.WriteTo([]byte(msg), addr); err != nil {
			s.Logger.Printf("ssdp: respond to %s: %s", addr, err)
		}
	}
}

func (s *Server) notifyLoop() {
	ticker := time.NewTicker(s.NotifyInterval)
	defer ticker.Stop()
	s.notifyAll("ssdp:alive")
	for {
		select {
		case <-ticker.C:
			s.notifyAll("ssdp:alive")
		case <-s.closed:
			s.notifyAll("ssdp:byebye")
			return
		}
	}
}

func (s *Server) notifyAll(nts string) {
	group, err := net.ResolveUDPAddr(s.NetAddr, s.AddrString)
	if err != nil {
		return
	}
	nts_, usns := s.usns()
	for i, nt := range nts_ {
		var msg string
		if nts == "ssdp:alive" {
			msg = fmt.Sprintf("NOTIFY * HTTP/1.1\r\n"+
				"HOST: %s\r\n"+
				"CACHE-CONTROL: max-age=%d\r\n"+
				"LOCATION: %s\r\n"+
				"NT: %s\r\n"+
				"NTS: ssdp:alive\r\n"+
				"SERVER: %s\r\n"+
				"USN: %s\r\n\r\n",
				s.AddrString, 2*int(s.NotifyInterval/time.Second), s.Location(s.ifIP), nt, s.Server, usns[i])
		} else {
			msg = fmt.Sprintf("NOTIFY * HTTP/1.1\r\n"+
				"HOST: %s\r\n"+
				"NT: %s\r\n"+
				"NTS: ssdp:byebye\r\n"+
				"USN: %s\r\n\r\n",
				s.AddrString, nt, usns[i])
		}
		if _, err := s.conn.WriteTo([]byte(msg), group); err != nil {
			s.Logger.Printf("ssdp: notify: %s", err)
		}
	}
}

// Close stops Serve and releases the socket.
func (s *Server) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return s.conn.Close()
}
