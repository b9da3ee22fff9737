// Package dispatch implements the UPnP adapter and SOAP/GENA dispatcher
// (spec §4.K, §6): the narrow interface every service action flows
// through, subscription bookkeeping, and the periodic eventing worker.
package dispatch

import "github.com/dlnasrv/dlna/upnp"

// ActionFunc is the shape every service exposes its actions as: named
// string arguments in, named string arguments out, or a upnp.Error.
type ActionFunc func(args map[string]string) (map[string]string, error)

// Service is one registered SOAP service: its identity, action table and
// SCPD description (spec §4.E/§6).
type Service struct {
	Type        upnp.ServiceURN
	ServiceID   string
	SCPDPath    string
	ControlPath string
	EventPath   string
	Handlers    map[string]ActionFunc
	Actions     []upnp.Action
	Vars        []upnp.StateVariable

	// InitialState renders this service's evented variables' current
	// values as a GENA notification body. It is called synchronously on a
	// new SUBSCRIBE and the result is sent to the subscriber's callbacks
	// from a background goroutine as the SEQ 0 event. Nil for services with
	// no evented state (e.g. the registrar).
	InitialState func() string
}

// SCPD renders this service's SCPD document (spec §4.E).
func (s *Service) SCPD() string {
	return upnp.BuildSCPD(s.Actions, s.Vars)
}

// UPnPDevice is the narrow adapter interface (spec §6) the core (component
// L) drives: registering virtual directories, advertising the root
// device, and sending/accepting eventing traffic. The Dispatcher in this
// package is one concrete implementation of the SOAP/GENA half of it.
type UPnPDevice interface {
	AddVirtualDir(prefix string)
	RegisterRootDevice(desc string, services []*Service)
	SendAdvertisement()
	NotifyExt(serviceID string, propertySet string)
	AcceptSubscriptionExt(serviceID, sid string, initialState string) error
}
