// Package device implements the root device assembly and HTTP virtual-dir
// routing (spec §6, component J): the device description document, SCPD
// serving, the shared SOAP control endpoint, GENA event subscription
// endpoints, and media resource streaming.
package device

import (
	"crypto/md5"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/internal/dispatch"
	"github.com/dlnasrv/dlna/internal/stream"
	"github.com/dlnasrv/dlna/internal/vfstree"
	"github.com/dlnasrv/dlna/upnp"
)

const (
	rootDeviceType = "urn:schemas-upnp-org:device:MediaServer:1"
	rootDescPath   = "/rootDesc.xml"
	controlPath    = "/ctl"
	webPathPrefix  = "/web"

	serverVersion = "1"
)

var serverField = fmt.Sprintf("Linux/3.0 DLNADOC/1.50 UPnP/1.0 dlnasrv/%s", serverVersion)

// Config bundles the construction-time device identity (spec §6).
type Config struct {
	FriendlyName    string
	Manufacturer    string
	ModelName       string
	XboxInteropMode bool
	DLNAMode        bool
	VirtualDir      string
	Opener          stream.Opener
	Logger          log.Logger
	// SourceIcon, if set, is resized down to the standard DLNA icon size
	// matrix and advertised in the device description (spec §6).
	SourceIcon []byte
}

// Device assembles the root device description and routes every
// SOAP/GENA/media HTTP surface the UPnP adapter exposes (spec §6).
type Device struct {
	cfg        Config
	udn        string
	tree       *vfstree.Tree
	dispatcher *dispatch.Dispatcher
	mux        *http.ServeMux
	rootDesc   []byte
	icons      []renderedIcon
}

// makeDeviceUUID derives a stable UDN from the friendly name (spec §4.D's
// id-stability philosophy extended to device identity).
func makeDeviceUUID(unique string) string {
	h := md5.New()
	io.WriteString(h, unique)
	return upnp.FormatUUID(h.Sum(nil))
}

// New assembles a Device: builds the rootDesc XML and registers every
// HTTP route the adapter needs.
func New(cfg Config, tree *vfstree.Tree, d *dispatch.Dispatcher) (*Device, error) {
	dev := &Device{cfg: cfg, tree: tree, dispatcher: d, mux: http.NewServeMux()}
	dev.udn = "uuid:" + makeDeviceUUID(cfg.FriendlyName)

	icons, err := buildIcons(cfg.SourceIcon)
	if err != nil {
		return nil, err
	}
	dev.icons = icons

	var services []upnp.Service
	for _, svc := range sortedServices(d) {
		services = append(services, upnp.Service{
			ServiceType: svc.Type.String(),
			ServiceId:   svc.ServiceID,
			SCPDURL:     scpdPath(svc),
			ControlURL:  controlPath,
			EventSubURL: eventPath(svc),
		})
	}

	vendorXML := `<dlna:X_DLNACAP/><dlna:X_DLNADOC>DMS-1.50</dlna:X_DLNADOC>`
	if cfg.XboxInteropMode {
		vendorXML += `<microsoft:magicPacketWakeSupported xmlns:microsoft="urn:schemas-microsoft-com:WMPNSS-1-0">0</microsoft:magicPacketWakeSupported>`
	}

	desc := upnp.DeviceDesc{
		Xmlns:       "urn:schemas-upnp-org:device-1-0",
		NSDLNA:      "urn:schemas-dlna-org:device-1-0",
		NSSEC:       "http://www.sec.co.kr/dlna",
		SpecVersion: upnp.SpecVersion{Major: 1, Minor: 0},
		Device: upnp.Device{
			DeviceType:   rootDeviceType,
			FriendlyName: cfg.FriendlyName,
			Manufacturer: cfg.Manufacturer,
			ModelName:    cfg.ModelName,
			UDN:          dev.udn,
			ServiceList:  services,
			IconList:     iconList(icons),
			VendorXML:    vendorXML,
		},
	}
	b, err := xml.MarshalIndent(desc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("device: marshalling device description: %w", err)
	}
	dev.rootDesc = append([]byte(xml.Header), b...)

	dev.initMux()
	return dev, nil
}

func iconList(icons []renderedIcon) []upnp.Icon {
	out := make([]upnp.Icon, len(icons))
	for i, ic := range icons {
		ic.Icon.URL = iconPath(i)
		out[i] = ic.Icon
	}
	return out
}

func sortedServices(d *dispatch.Dispatcher) []*dispatch.Service {
	var out []*dispatch.Service
	for _, id := range []string{
		"urn:upnp-org:serviceId:ContentDirectory",
		"urn:upnp-org:serviceId:ConnectionManager",
		"urn:upnp-org:serviceId:AVTransport",
		"urn:microsoft.com:serviceId:X_MS_MediaReceiverRegistrar",
	} {
		if svc, ok := d.ServiceByID(id); ok {
			out = append(out, svc)
		}
	}
	return out
}

func scpdPath(svc *dispatch.Service) string {
	return "/scpd/" + dispatch.ServiceTypePath(svc.Type.String()) + ".xml"
}

func eventPath(svc *dispatch.Service) string {
	return "/evt/" + dispatch.ServiceTypePath(svc.Type.String())
}

func (dev *Device) UDN() string { return dev.udn }

func (dev *Device) RootDescXML() []byte { return dev.rootDesc }

func (dev *Device) Handler() http.Handler { return dev.mux }

func (dev *Device) initMux() {
	dev.mux.HandleFunc(rootDescPath, dev.serveRootDesc)
	dev.mux.HandleFunc(controlPath, dev.serveControl)
	for _, svc := range sortedServices(dev.dispatcher) {
		svc := svc
		dev.mux.HandleFunc(scpdPath(svc), func(w http.ResponseWriter, r *http.Request) {
			dev.dispatcher.ServeSCPD(svc, w, r)
		})
		dev.mux.HandleFunc(eventPath(svc), func(w http.ResponseWriter, r *http.Request) {
			dev.dispatcher.ServeEventing(svc, w, r)
		})
	}
	dev.mux.HandleFunc(webPathPrefix+"/", dev.serveResource)
	dev.registerIconRoutes()
}

func (dev *Device) serveRootDesc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Server", serverField)
	w.Write(dev.rootDesc)
}

// serveControl dispatches the single shared control endpoint by its
// SOAPACTION header's service URN: infer the desired service from the
// request headers rather than routing each service to its own path.
func (dev *Device) serveControl(w http.ResponseWriter, r *http.Request) {
	sa, err := upnp.ParseActionHTTPHeader(r.Header.Get("SOAPACTION"))
	if err != nil {
		http.Error(w, "bad SOAPACTION", http.StatusBadRequest)
		return
	}
	for _, svc := range sortedServices(dev.dispatcher) {
		if svc.Type.Type == sa.Type() {
			dev.dispatcher.ServeControl(svc, w, r)
			return
		}
	}
	http.Error(w, "unknown service", http.StatusNotFound)
}

// serveResource streams a VFS resource by numeric id, honouring HTTP
// Range via http.ServeContent over a seekable adapter of the object's
// stream. The TimeSeekRange.dlna.org header is not interpreted.
func (dev *Device) serveResource(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, webPathPrefix+"/"), stripExt(r.URL.Path))
	id64, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	obj, ok := dev.tree.GetByID(vfstree.ID(id64))
	if !ok || obj.IsContainer() {
		http.NotFound(w, r)
		return
	}
	item := obj.Resource.Item

	s, err := dev.cfg.Opener.Open(item.URL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer s.Close()

	w.Header().Set("Content-Type", item.Profile.MIME)
	w.Header().Set("Server", serverField)
	if dev.cfg.DLNAMode {
		w.Header().Set("contentFeatures.dlna.org", resourceOtherField(obj))
	}
	http.ServeContent(w, r, "", time.Time{}, streamReadSeeker{s})
}

func stripExt(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i:]
	}
	return ""
}

func resourceOtherField(obj *vfstree.Object) string {
	for _, res := range obj.Resource.Resources {
		return res.ProtocolInfo.Other
	}
	return ""
}

// streamReadSeeker adapts stream.Stream to io.ReadSeeker for
// http.ServeContent, which needs Seek(io.SeekEnd) to learn content length;
// Stream's own contract forbids it (spec §4.A), so Length is used instead.
type streamReadSeeker struct {
	stream.Stream
}

func (s streamReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekEnd:
		length := s.Length()
		if length < 0 {
			return 0, fmt.Errorf("device: unknown length, cannot seek from end")
		}
		return s.Stream.Seek(length+offset, io.SeekStart)
	default:
		return s.Stream.Seek(offset, whence)
	}
}
