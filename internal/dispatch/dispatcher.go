package dispatch

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/upnp"
)

// subscription is one active GENA subscriber (spec §4.K).
type subscription struct {
	sid       string
	serviceID string
	callbacks []*url.URL
	seq       uint32
	expiresAt time.Time
}

// Dispatcher is the concrete UPnP adapter (spec §6): it owns the SOAP
// control/SCPD HTTP surfaces and the GENA subscription table, and runs the
// periodic eventing worker that flushes queued notifications.
type Dispatcher struct {
	logger   log.Logger
	client   *http.Client
	services map[string]*Service // keyed by ServiceID

	mu   sync.Mutex
	subs map[string]*subscription

	pending   chan pendingNotify
	closeOnce sync.Once
	closeCh   chan struct{}
}

type pendingNotify struct {
	serviceID   string
	propertySet string
}

// NewDispatcher builds an empty Dispatcher and starts its eventing worker.
func NewDispatcher(logger log.Logger) *Dispatcher {
	d := &Dispatcher{
		logger:   logger,
		client:   &http.Client{Timeout: 5 * time.Second},
		services: map[string]*Service{},
		subs:     map[string]*subscription{},
		pending:  make(chan pendingNotify, 64),
		closeCh:  make(chan struct{}),
	}
	go d.eventingWorker()
	return d
}

func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.closeCh) })
}

// RegisterService adds svc to the dispatch table, keyed by its ServiceID.
func (d *Dispatcher) RegisterService(svc *Service) {
	d.services[svc.ServiceID] = svc
}

func (d *Dispatcher) ServiceByID(id string) (*Service, bool) {
	svc, ok := d.services[id]
	return svc, ok
}

// NotifyExt implements the adapter's notify_ext (spec §6): queue a
// property-set body for serviceID's subscribers, flushed by the eventing
// worker rather than sent synchronously (spec §4.K's periodic, ~200ms
// coalesced eventing).
func (d *Dispatcher) NotifyExt(serviceID string, propertySet string) {
	select {
	case d.pending <- pendingNotify{serviceID: serviceID, propertySet: propertySet}:
	default:
		d.logger.Levelf(log.Warning, "dispatch: eventing queue full, dropping notify for %s", serviceID)
	}
}

// eventingWorker is the periodic (200ms) eventing worker of spec §4.K: it
// drains queued notifications and POSTs a GENA NOTIFY to every active
// subscriber of the named service.
func (d *Dispatcher) eventingWorker() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	var queued []pendingNotify
	for {
		select {
		case <-d.closeCh:
			return
		case n := <-d.pending:
			queued = append(queued, n)
		case <-ticker.C:
			d.pruneExpired()
			if len(queued) == 0 {
				continue
			}
			batch := queued
			queued = nil
			for _, n := range batch {
				d.flushNotify(n)
			}
		}
	}
}

func (d *Dispatcher) flushNotify(n pendingNotify) {
	d.mu.Lock()
	var targets []*subscription
	for _, s := range d.subs {
		if s.serviceID == n.serviceID {
			targets = append(targets, s)
		}
	}
	d.mu.Unlock()

	for _, s := range targets {
		d.mu.Lock()
		s.seq++
		seq := s.seq
		d.mu.Unlock()
		for _, cb := range s.callbacks {
			d.sendNotify(cb, s.sid, seq, n.propertySet)
		}
	}
}

func (d *Dispatcher) sendNotify(cb *url.URL, sid string, seq uint32, body string) {
	req, err := http.NewRequest("NOTIFY", cb.String(), bytes.NewBufferString(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("NT", "upnp:event")
	req.Header.Set("NTS", "upnp:propchange")
	req.Header.Set("SID", sid)
	req.Header.Set("SEQ", strconv.FormatUint(uint64(seq), 10))
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Levelf(log.Debug, "dispatch: NOTIFY to %s failed: %v", cb, err)
		return
	}
	resp.Body.Close()
}

// ServeEventing handles GENA SUBSCRIBE/UNSUBSCRIBE requests against a
// service's eventSubURL (spec §4.K/§6).
func (d *Dispatcher) ServeEventing(svc *Service, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "SUBSCRIBE":
		d.handleSubscribe(svc, w, r)
	case "UNSUBSCRIBE":
		d.handleUnsubscribe(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (d *Dispatcher) handleSubscribe(svc *Service, w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("SID")
	timeout := 1800

	if sid != "" {
		// Renewal.
		d.mu.Lock()
		s, ok := d.subs[sid]
		if ok {
			s.expiresAt = time.Now().Add(time.Duration(timeout) * time.Second)
		}
		d.mu.Unlock()
		if !ok {
			http.Error(w, "no such subscription", http.StatusPreconditionFailed)
			return
		}
		w.Header().Set("SID", sid)
		w.Header().Set("TIMEOUT", fmt.Sprintf("Second-%d", timeout))
		return
	}

	callbacks := upnp.ParseCallbackURLs(r.Header.Get("CALLBACK"))
	if len(callbacks) == 0 {
		http.Error(w, "missing CALLBACK", http.StatusPreconditionFailed)
		return
	}
	newSID := "uuid:" + upnp.NewRandomUUID()
	s := &subscription{
		sid:       newSID,
		serviceID: svc.ServiceID,
		callbacks: callbacks,
		expiresAt: time.Now().Add(time.Duration(timeout) * time.Second),
	}
	d.mu.Lock()
	d.subs[newSID] = s
	d.mu.Unlock()

	w.Header().Set("SID", newSID)
	w.Header().Set("TIMEOUT", fmt.Sprintf("Second-%d", timeout))

	// GENA requires every evented variable's current value to reach a new
	// subscriber as its first event, SEQ 0, ahead of any later NotifyExt.
	if svc.InitialState != nil {
		body := svc.InitialState()
		go func() {
			for _, cb := range callbacks {
				d.sendNotify(cb, newSID, 0, body)
			}
		}()
	}
}

func (d *Dispatcher) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("SID")
	d.mu.Lock()
	delete(d.subs, sid)
	d.mu.Unlock()
}

// pruneExpired removes subscriptions past their TIMEOUT; called
// opportunistically from the eventing worker's tick.
func (d *Dispatcher) pruneExpired() {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for sid, s := range d.subs {
		if now.After(s.expiresAt) {
			delete(d.subs, sid)
		}
	}
}

// ServeSCPD serves a service's SCPD document.
func (d *Dispatcher) ServeSCPD(svc *Service, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	_, _ = w.Write([]byte(svc.SCPD()))
}

// ServiceTypePath derives the conventional last path segment of a service
// type URN (e.g. "ContentDirectory"), used to build virtual-dir paths.
func ServiceTypePath(urn string) string {
	parts := strings.Split(urn, ":")
	if len(parts) < 2 {
		return urn
	}
	return parts[len(parts)-2]
}
