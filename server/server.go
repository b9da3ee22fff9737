// Package server is the top-level controller (spec §6, component L): it
// wires the VFS, profiler registry, the four SOAP services, the UPnP
// dispatcher/eventing worker, the HTTP device surface and SSDP announcers
// (one IPv4 and one IPv6 link-local) on every usable network interface
// into a single running server.
package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/internal/avts"
	"github.com/dlnasrv/dlna/internal/cds"
	"github.com/dlnasrv/dlna/internal/cms"
	"github.com/dlnasrv/dlna/internal/device"
	"github.com/dlnasrv/dlna/internal/dispatch"
	"github.com/dlnasrv/dlna/internal/msr"
	"github.com/dlnasrv/dlna/internal/profile"
	"github.com/dlnasrv/dlna/internal/resource"
	"github.com/dlnasrv/dlna/internal/stream"
	"github.com/dlnasrv/dlna/internal/vfstree"
	"github.com/dlnasrv/dlna/ssdp"
	"github.com/dlnasrv/dlna/upnp"
)

// Capability bits selecting which personality this process advertises
// (spec §6: UPnP-AV-only, DLNA-branded, or Xbox-360-interop MediaServer).
type Capability int

const (
	CapUPnPAV Capability = 1 << iota
	CapDLNA
	CapXboxInterop
)

// Config is the Controller's construction-time configuration (spec §6).
type Config struct {
	FriendlyName    string
	Manufacturer    string
	ModelName       string
	Capabilities    Capability
	Port            int
	CheckExtensions bool
	VirtualDir      string
	SourceIcon      []byte
	Verbosity       log.Level
	Logger          log.Logger
}

// Controller owns the entire running server (spec §6's top-level init/
// start/stop/uninit lifecycle).
type Controller struct {
	cfg    Config
	logger log.Logger

	tree       *vfstree.Tree
	registry   *profile.Registry
	opener     stream.Opener
	dispatcher *dispatch.Dispatcher
	device     *device.Device
	avtMgr     *avts.Manager

	httpListener net.Listener
	ssdpServers  []*ssdp.Server

	mu      sync.Mutex
	started bool
}

// New assembles a Controller without starting any network I/O (spec §6's
// init phase).
func New(cfg Config) (*Controller, error) {
	logger := cfg.Logger
	if logger.IsZero() {
		logger = log.Default
	}
	logger = logger.WithNames("server")

	opener := stream.DefaultOpener{ExtensionSniffer: profile.ExtensionProfiler{}}

	registry := profile.NewRegistry()
	registry.Register(&profile.FFProbeProfiler{Logger: logger.WithNames("ffprobe")})
	registry.Register(profile.ExtensionProfiler{})

	c := &Controller{cfg: cfg, logger: logger, registry: registry, opener: opener}

	httpGet := resource.HTTPGetProtocol{VirtualDir: cfg.VirtualDir, Host: c.hostAddr}
	c.tree = vfstree.New(vfstree.Config{
		XboxInteropMode: cfg.Capabilities&CapXboxInterop != 0,
		DLNAMode:        cfg.Capabilities&CapDLNA != 0,
		Protocols:       []resource.Protocol{httpGet},
		Host:            c.hostAddr,
		VirtualDir:      cfg.VirtualDir,
		Logger:          logger,
	})

	c.dispatcher = dispatch.NewDispatcher(logger.WithNames("dispatch"))
	c.registerServices()

	dev, err := device.New(device.Config{
		FriendlyName:    cfg.FriendlyName,
		Manufacturer:    cfg.Manufacturer,
		ModelName:       cfg.ModelName,
		XboxInteropMode: cfg.Capabilities&CapXboxInterop != 0,
		DLNAMode:        cfg.Capabilities&CapDLNA != 0,
		VirtualDir:      cfg.VirtualDir,
		Opener:          opener,
		Logger:          logger,
		SourceIcon:      cfg.SourceIcon,
	}, c.tree, c.dispatcher)
	if err != nil {
		return nil, fmt.Errorf("server: building device: %w", err)
	}
	c.device = dev
	return c, nil
}

func (c *Controller) registerServices() {
	cdsSvc := &cds.Service{Tree: c.tree, Logger: c.logger.WithNames("cds")}
	cdsURN, _ := upnp.ParseServiceType(cds.ServiceType)
	c.dispatcher.RegisterService(&dispatch.Service{
		Type: cdsURN, ServiceID: cds.ServiceID,
		Handlers: toDispatchHandlers(cdsSvc.Handlers()),
		Actions:  cds.Actions(), Vars: cds.StateVariables(),
		InitialState: cdsSvc.InitialState,
	})

	cmsSvc := &cms.Service{Tree: c.tree}
	cmsURN, _ := upnp.ParseServiceType(cms.ServiceType)
	c.dispatcher.RegisterService(&dispatch.Service{
		Type: cmsURN, ServiceID: cms.ServiceID,
		Handlers: toDispatchHandlers(cmsSvc.Handlers()),
		Actions:  cms.Actions(), Vars: cms.StateVariables(),
		InitialState: cmsSvc.InitialState,
	})

	c.avtMgr = avts.NewManager(c.tree, c.logger.WithNames("avts"))
	avtURN, _ := upnp.ParseServiceType(avts.ServiceType)
	avtSvc := &dispatch.Service{
		Type: avtURN, ServiceID: avts.ServiceID,
		Handlers: toDispatchHandlers(c.avtMgr.Handlers()),
		Actions:  avts.Actions(), Vars: avts.StateVariables(),
		InitialState: func() string { return c.avtMgr.InitialState(0) },
	}
	c.dispatcher.RegisterService(avtSvc)
	c.avtMgr.SetNotifier(func(lastChangeXML string) {
		c.dispatcher.NotifyExt(avts.ServiceID, lastChangeXML)
	})

	msrSvc := msr.Service{}
	msrURN, _ := upnp.ParseServiceType(msr.ServiceType)
	c.dispatcher.RegisterService(&dispatch.Service{
		Type: msrURN, ServiceID: msr.ServiceID,
		Handlers: toDispatchHandlers(msrSvc.Handlers()),
		Actions:  msr.Actions(), Vars: msr.StateVariables(),
	})
}

// toDispatchHandlers adapts a service's own ActionFunc type to
// dispatch.ActionFunc; both share the same underlying signature, but
// distinct named types keep each service package import-independent of
// the dispatcher.
func toDispatchHandlers[F ~func(map[string]string) (map[string]string, error)](in map[string]F) map[string]dispatch.ActionFunc {
	out := make(map[string]dispatch.ActionFunc, len(in))
	for name, fn := range in {
		out[name] = dispatch.ActionFunc(fn)
	}
	return out
}

func (c *Controller) hostAddr() string {
	if c.httpListener == nil {
		return ""
	}
	return c.httpListener.Addr().String()
}

// usableInterfaces lists network interfaces that are up, multicast-capable
// and have a positive MTU (spec §6).
func usableInterfaces() ([]net.Interface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []net.Interface
	for _, i := range ifs {
		if i.Flags&net.FlagUp == 0 || i.Flags&net.FlagMulticast == 0 || i.MTU <= 0 {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// serviceURNStrings returns every registered service's type URN, for SSDP
// announcement (spec §4.K/§6).
func (c *Controller) serviceURNStrings() []string {
	var out []string
	for _, id := range []string{cds.ServiceID, cms.ServiceID, avts.ServiceID, msr.ServiceID} {
		if svc, ok := c.dispatcher.ServiceByID(id); ok {
			out = append(out, svc.Type.String())
		}
	}
	return out
}

// Start begins serving HTTP and SSDP (spec §6's start phase). It returns
// once the HTTP listener and every interface's SSDP announcer are up;
// serving itself continues on background goroutines until Stop.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("server: already started")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", c.cfg.Port))
	if err != nil {
		return fmt.Errorf("server: listening on port %d: %w", c.cfg.Port, err)
	}
	c.httpListener = ln
	go func() {
		if err := http.Serve(ln, c.device.Handler()); err != nil {
			c.logger.Levelf(log.Debug, "server: http.Serve: %v", err)
		}
	}()

	ifs, err := usableInterfaces()
	if err != nil {
		return fmt.Errorf("server: listing interfaces: %w", err)
	}
	services := c.serviceURNStrings()
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	for _, iface := range ifs {
		for _, addrString := range []string{ssdp.AddrString, ssdp.AddrString6LL} {
			s := &ssdp.Server{
				Interface: iface,
				AddrString: addrString,
				Devices:   []string{"urn:schemas-upnp-org:device:MediaServer:1"},
				Services:  services,
				UUID:      strings.TrimPrefix(c.device.UDN(), "uuid:"),
				Server:    "Linux/3.0 DLNADOC/1.50 UPnP/1.0 dlnasrv/1",
				Location: func(ip net.IP) string {
					host := ip.String()
					if strings.Contains(host, ":") {
						host = "[" + host + "]"
					}
					return fmt.Sprintf("http://%s:%s/rootDesc.xml", host, portStr)
				},
				Logger: c.logger.WithNames("ssdp"),
			}
			if err := s.Init(); err != nil {
				c.logger.Levelf(log.Debug, "server: ssdp init on %s/%s: %v", iface.Name, addrString, err)
				continue
			}
			go func() {
				if err := s.Serve(); err != nil {
					c.logger.Levelf(log.Debug, "server: ssdp serve: %v", err)
				}
			}()
			c.ssdpServers = append(c.ssdpServers, s)
		}
	}

	c.started = true
	return nil
}

// Stop tears down every SSDP announcer (sending ssdp:byebye), the HTTP
// listener and the eventing worker (spec §6's stop/uninit phases).
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	for _, s := range c.ssdpServers {
		s.Close()
	}
	c.ssdpServers = nil
	c.dispatcher.Close()
	err := c.httpListener.Close()
	c.started = false
	return err
}

// Tree exposes the VFS for library-population code (spec §4.D's
// add_container/add_resource, driven by whatever indexes media into this
// server).
func (c *Controller) Tree() *vfstree.Tree { return c.tree }

// Registry exposes the profiler registry for library-population code.
func (c *Controller) Registry() *profile.Registry { return c.registry }

// Opener exposes the stream opener used to identify/play media.
func (c *Controller) Opener() stream.Opener { return c.opener }

// AddMedia implements the common "index one file/URL into the VFS" path:
// profile it, then register it as a resource under parentID (spec §4.B +
// §4.D composed).
func (c *Controller) AddMedia(url string, parentID vfstree.ID) (vfstree.ID, error) {
	item, err := profile.New(c.registry, c.opener, url)
	if err != nil {
		return 0, fmt.Errorf("server: profiling %s: %w", url, err)
	}
	name := item.URL
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return c.tree.AddResource(name, item, parentID)
}
