package avts

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/dlna"
	"github.com/dlnasrv/dlna/internal/vfstree"
	"github.com/dlnasrv/dlna/upnp"
)

const (
	ServiceType = "urn:schemas-upnp-org:service:AVTransport:1"
	ServiceID   = "urn:upnp-org:serviceId:AVTransport"
)

// ActionFunc matches internal/cds's dispatch convention; the instance id is
// threaded through InstanceID like every other AVTransport argument.
type ActionFunc func(args map[string]string) (map[string]string, error)

// NotifyFunc is called with a fully-composed LastChange document body
// whenever an instance's evented state changes (spec §4.H/§4.K wiring into
// the eventing worker, component K).
type NotifyFunc func(lastChangeXML string)

// instance is one AVTransport logical player (spec §4.H): its own
// transport state, playlist and playback goroutine.
type instance struct {
	mu        sync.Mutex
	id        uint32
	state     TransportState
	status    TransportStatus
	speed     string
	position  time.Duration
	duration  time.Duration
	playCount uint32
	playlist  *Playlist

	stopCh chan struct{}
	notify NotifyFunc
	tree   *vfstree.Tree
	logger log.Logger
}

func newInstance(id uint32, tree *vfstree.Tree, notify NotifyFunc, logger log.Logger) *instance {
	inst := &instance{
		id:       id,
		state:    NoMediaPresent,
		status:   StatusOK,
		speed:    "1",
		playlist: newPlaylist(),
		stopCh:   make(chan struct{}),
		notify:   notify,
		tree:     tree,
		logger:   logger,
	}
	go inst.playbackLoop()
	return inst
}

func (i *instance) close() { close(i.stopCh) }

// playbackLoop is the per-instance playback thread (spec §4.H): while
// PLAYING, it advances position at wall-clock rate and auto-advances the
// playlist (or stops) once position reaches a known track duration. Track
// durations come from lookupDuration, which always reports 0 (unknown), so
// a track never reaches its end on its own.
func (i *instance) playbackLoop() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-i.stopCh:
			return
		case <-ticker.C:
			i.tick()
		}
	}
}

func (i *instance) tick() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != Playing {
		return
	}
	i.position += 200 * time.Millisecond
	if i.duration > 0 && i.position >= i.duration {
		if i.playlist.Advance() {
			i.loadCurrentLocked()
			i.emitLocked()
		} else {
			i.state = Stopped
			i.position = 0
			i.emitLocked()
		}
	}
}

// loadCurrentLocked resets position and duration for the playlist's
// current track and takes the duration from lookupDuration when that
// reports one (spec §4.H: metadata supplied out-of-band on
// SetAVTransportURI doesn't itself carry a machine-checkable duration).
func (i *instance) loadCurrentLocked() {
	i.position = 0
	i.duration = 0
	track, ok := i.playlist.Current()
	if !ok {
		return
	}
	if dur := lookupDuration(i.tree, track.URI); dur > 0 {
		i.duration = dur
	}
}

func lookupDuration(tree *vfstree.Tree, uri string) time.Duration {
	// The URI is not matched against the VFS: every track's duration is
	// reported as 0 (unknown).
	_ = uri
	_ = tree
	return 0
}

// lastChangeVarsLocked snapshots every AVTransport evented variable for
// the current state; caller must hold i.mu.
func (i *instance) lastChangeVarsLocked() map[string]string {
	track, hasTrack := i.playlist.Current()
	vars := map[string]string{
		"TransportState":          i.state.String(),
		"TransportStatus":         i.status.String(),
		"PlaybackStorageMedium":   "NETWORK",
		"CurrentTrack":            fmt.Sprintf("%d", i.playlist.CurrentTrackNr()),
		"CurrentTrackDuration":    dlna.FormatDuration(i.duration),
		"CurrentMediaDuration":    dlna.FormatDuration(i.duration),
		"TransportPlaySpeed":      i.speed,
		"CurrentTransportActions": currentActions(i.state),
	}
	if hasTrack {
		vars["CurrentTrackURI"] = track.URI
		vars["CurrentTrackMetaData"] = track.Metadata
		vars["AVTransportURI"] = track.URI
		vars["AVTransportURIMetaData"] = track.Metadata
	}
	return vars
}

func (i *instance) emitLocked() {
	if i.notify == nil {
		return
	}
	body, err := buildLastChange(strconv.FormatUint(uint64(i.id), 10), i.lastChangeVarsLocked())
	if err != nil {
		i.logger.Levelf(log.Warning, "avts: building LastChange: %v", err)
		return
	}
	i.notify(body)
}

func currentActions(s TransportState) string {
	switch s {
	case Playing, Transitioning:
		return "Pause,Stop,Seek,Next,Previous"
	case PausedPlayback:
		return "Play,Stop"
	case Stopped:
		return "Play"
	default:
		return "NONE"
	}
}

// Manager owns every AVTransport instance, keyed by InstanceID (spec
// §4.H: instance 0 always exists; others are created lazily).
type Manager struct {
	mu        sync.Mutex
	instances map[uint32]*instance
	tree      *vfstree.Tree
	notify    NotifyFunc
	logger    log.Logger
}

func NewManager(tree *vfstree.Tree, logger log.Logger) *Manager {
	m := &Manager{instances: map[uint32]*instance{}, tree: tree, logger: logger}
	m.instances[0] = newInstance(0, tree, nil, logger)
	return m
}

// SetNotifier wires the manager's LastChange emission into the eventing
// worker (component K); called once at startup.
func (m *Manager) SetNotifier(fn NotifyFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
	for _, inst := range m.instances {
		inst.notify = fn
	}
}

// InitialState renders instance id's current state as a LastChange body,
// for the initial GENA event a new AVTransport subscriber must receive.
func (m *Manager) InitialState(id uint32) string {
	inst := m.getOrCreate(id)
	inst.mu.Lock()
	defer inst.mu.Unlock()
	body, err := buildLastChange(strconv.FormatUint(uint64(id), 10), inst.lastChangeVarsLocked())
	if err != nil {
		inst.logger.Levelf(log.Warning, "avts: building initial LastChange: %v", err)
		return ""
	}
	return body
}

func (m *Manager) getOrCreate(id uint32) *instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		inst = newInstance(id, m.tree, m.notify, m.logger)
		m.instances[id] = inst
	}
	return inst
}

func (m *Manager) get(id uint32) (*instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// destroy tears down a non-zero instance (spec §4.H: "destroy instance on
// Stop of a non-zero instance"). Instance 0 is never destroyed.
func (m *Manager) destroy(id uint32) {
	if id == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst, ok := m.instances[id]; ok {
		inst.close()
		delete(m.instances, id)
	}
}

func parseInstanceID(args map[string]string) (uint32, error) {
	v, err := strconv.ParseUint(args["InstanceID"], 10, 32)
	if err != nil {
		return 0, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "bad InstanceID %q", args["InstanceID"])
	}
	return uint32(v), nil
}

// Handlers returns the AVTransport dispatch table.
func (m *Manager) Handlers() map[string]ActionFunc {
	return map[string]ActionFunc{
		"SetAVTransportURI":        m.setAVTransportURI,
		"SetNextAVTransportURI":    m.setNextAVTransportURI,
		"GetMediaInfo":             m.getMediaInfo,
		"GetTransportInfo":         m.getTransportInfo,
		"GetPositionInfo":          m.getPositionInfo,
		"GetDeviceCapabilities":    m.getDeviceCapabilities,
		"GetTransportSettings":     m.getTransportSettings,
		"Play":                     m.play,
		"Pause":                    m.pause,
		"Stop":                     m.stop,
		"Seek":                     m.seek,
		"Next":                     m.next,
		"Previous":                 m.previous,
		"GetCurrentTransportActions": m.getCurrentTransportActions,
	}
}

func (m *Manager) setAVTransportURI(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst := m.getOrCreate(id)
	inst.mu.Lock()
	defer inst.mu.Unlock()
	switch inst.state {
	case Playing, PausedPlayback:
		// While already playing/paused, SetAVTransportURI enqueues the new
		// URI rather than tearing down current playback (spec §4.H); only
		// STOPPED clears the playlist and re-buffers.
		inst.playlist.SetNext(args["CurrentURI"], args["CurrentURIMetaData"])
	default:
		inst.playlist.SetCurrent(args["CurrentURI"], args["CurrentURIMetaData"])
		inst.loadCurrentLocked()
		inst.state = Stopped
	}
	inst.status = StatusOK
	inst.emitLocked()
	return map[string]string{}, nil
}

func (m *Manager) setNextAVTransportURI(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.playlist.SetNext(args["NextURI"], args["NextURIMetaData"])
	inst.emitLocked()
	return map[string]string{}, nil
}

func (m *Manager) getMediaInfo(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	track, _ := inst.playlist.Current()
	return map[string]string{
		"NrTracks":           fmt.Sprintf("%d", inst.playlist.NumTracks()),
		"MediaDuration":      dlna.FormatDuration(inst.duration),
		"CurrentURI":         track.URI,
		"CurrentURIMetaData": track.Metadata,
		"NextURI":            "",
		"NextURIMetaData":    "",
		"PlayMedium":         "NETWORK",
		"RecordMedium":       "NOT_IMPLEMENTED",
		"WriteStatus":        "NOT_IMPLEMENTED",
	}, nil
}

func (m *Manager) getTransportInfo(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return map[string]string{
		"CurrentTransportState":  inst.state.String(),
		"CurrentTransportStatus": inst.status.String(),
		"CurrentSpeed":           inst.speed,
	}, nil
}

func (m *Manager) getPositionInfo(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	track, _ := inst.playlist.Current()
	return map[string]string{
		"Track":         fmt.Sprintf("%d", inst.playlist.CurrentTrackNr()),
		"TrackDuration": dlna.FormatDuration(inst.duration),
		"TrackMetaData": track.Metadata,
		"TrackURI":      track.URI,
		"RelTime":       dlna.FormatDuration(inst.position),
		"AbsTime":       "NOT_IMPLEMENTED",
		"RelCount":      fmt.Sprintf("%d", inst.playCount),
		"AbsCount":      fmt.Sprintf("%d", inst.playCount),
	}, nil
}

func (m *Manager) getDeviceCapabilities(map[string]string) (map[string]string, error) {
	return map[string]string{
		"PlayMedia":    "NETWORK,HDD",
		"RecMedia":     "NOT_IMPLEMENTED",
		"RecQualityModes": "NOT_IMPLEMENTED",
	}, nil
}

func (m *Manager) getTransportSettings(args map[string]string) (map[string]string, error) {
	return map[string]string{
		"PlayMode":       "NORMAL",
		"RecQualityMode": "NOT_IMPLEMENTED",
	}, nil
}

func (m *Manager) getCurrentTransportActions(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return map[string]string{"Actions": currentActions(inst.state)}, nil
}

func (m *Manager) play(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	speed := args["Speed"]
	if speed != "" && speed != "1" {
		return nil, upnp.Errorf(upnp.PlaySpeedNotSupportedErrorCode, "unsupported play speed %q", speed)
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !canTransition("Play", inst.state) {
		return nil, upnp.Errorf(upnp.TransitionNotAvailableErrorCode, "cannot Play from %s", inst.state)
	}
	if _, hasTrack := inst.playlist.Current(); !hasTrack {
		return nil, upnp.Errorf(upnp.NoContentsErrorCode, "no track loaded")
	}
	inst.state = Playing
	inst.speed = "1"
	inst.playCount++
	inst.emitLocked()
	return map[string]string{}, nil
}

func (m *Manager) pause(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !canTransition("Pause", inst.state) {
		return nil, upnp.Errorf(upnp.TransitionNotAvailableErrorCode, "cannot Pause from %s", inst.state)
	}
	inst.state = PausedPlayback
	inst.emitLocked()
	return map[string]string{}, nil
}

func (m *Manager) stop(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	if inst.state == Stopped {
		// Stop on an already-stopped instance is a no-op success (spec
		// §4.H's transition table), not a re-teardown.
		inst.mu.Unlock()
		return map[string]string{}, nil
	}
	if !canTransition("Stop", inst.state) {
		inst.mu.Unlock()
		return nil, upnp.Errorf(upnp.TransitionNotAvailableErrorCode, "cannot Stop from %s", inst.state)
	}
	inst.state = Stopped
	inst.position = 0
	inst.emitLocked()
	inst.mu.Unlock()

	m.destroy(id)
	return map[string]string{}, nil
}

func (m *Manager) seek(args map[string]string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !canTransition("Seek", inst.state) {
		return nil, upnp.Errorf(upnp.TransitionNotAvailableErrorCode, "cannot Seek from %s", inst.state)
	}
	switch args["Unit"] {
	case "TRACK_NR":
		nr, err := strconv.Atoi(args["Target"])
		if err != nil || !inst.playlist.SeekTrack(nr) {
			return nil, upnp.Errorf(upnp.ArgumentValueInvalidErrorCode, "bad track number %q", args["Target"])
		}
		inst.loadCurrentLocked()
	case "REL_TIME", "ABS_TIME":
		d, err := dlna.ParseNPTRange(args["Target"] + "-")
		if err != nil {
			return nil, upnp.Errorf(upnp.ArgumentValueInvalidErrorCode, "bad seek target %q", args["Target"])
		}
		inst.position = d.Start
	default:
		return nil, upnp.Errorf(upnp.NotImplementedErrorCode, "unsupported seek unit %q", args["Unit"])
	}
	inst.emitLocked()
	return map[string]string{}, nil
}

func (m *Manager) next(args map[string]string) (map[string]string, error) {
	return m.advance(args, "Next")
}

func (m *Manager) previous(args map[string]string) (map[string]string, error) {
	return m.advance(args, "Previous")
}

func (m *Manager) advance(args map[string]string, action string) (map[string]string, error) {
	id, err := parseInstanceID(args)
	if err != nil {
		return nil, err
	}
	inst, ok := m.get(id)
	if !ok {
		return nil, upnp.Errorf(upnp.InvalidInstanceIDErrorCode, "unknown InstanceID %d", id)
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !canTransition(action, inst.state) {
		return nil, upnp.Errorf(upnp.TransitionNotAvailableErrorCode, "cannot %s from %s", action, inst.state)
	}
	// PLAYING/PAUSED_PLAYBACK -(Next/Previous)-> TRANSITIONING, then either
	// the hand-off succeeds (-> PLAYING on the retargeted track) or it
	// doesn't (-> STOPPED). Two LastChange events, in that order (spec
	// §4.H transition table, scenario S6).
	inst.state = Transitioning
	inst.emitLocked()

	var advanced bool
	if action == "Next" {
		advanced = inst.playlist.Advance()
	} else {
		advanced = inst.playlist.SeekTrack(inst.playlist.CurrentTrackNr() - 1)
	}
	if !advanced {
		inst.state = Stopped
		inst.position = 0
		inst.emitLocked()
		return map[string]string{}, nil
	}
	inst.loadCurrentLocked()
	inst.state = Playing
	inst.emitLocked()
	return map[string]string{}, nil
}
