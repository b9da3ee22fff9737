package avts

import (
	"testing"

	"github.com/anacrolix/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnasrv/dlna/internal/vfstree"
)

func newTestManager() *Manager {
	return NewManager(vfstree.New(vfstree.Config{}), log.Logger{})
}

func TestSetAVTransportURIThenPlay(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()

	_, err := h["SetAVTransportURI"](map[string]string{
		"InstanceID": "0", "CurrentURI": "http://host/a.mp4", "CurrentURIMetaData": "",
	})
	require.NoError(t, err)

	out, err := h["GetTransportInfo"](map[string]string{"InstanceID": "0"})
	require.NoError(t, err)
	assert.Equal(t, "STOPPED", out["CurrentTransportState"])

	_, err = h["Play"](map[string]string{"InstanceID": "0", "Speed": "1"})
	require.NoError(t, err)

	out, err = h["GetTransportInfo"](map[string]string{"InstanceID": "0"})
	require.NoError(t, err)
	assert.Equal(t, "PLAYING", out["CurrentTransportState"])
}

func TestPlayWithoutTrackFails(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	_, err := h["Play"](map[string]string{"InstanceID": "0"})
	assert.Error(t, err)
}

func TestPlayUnsupportedSpeedFails(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	_, err := h["Play"](map[string]string{"InstanceID": "0", "Speed": "2"})
	assert.Error(t, err)
}

func TestPauseRequiresPlaying(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	_, err := h["Pause"](map[string]string{"InstanceID": "0"})
	assert.Error(t, err, "cannot pause from STOPPED")

	h["Play"](map[string]string{"InstanceID": "0"})
	_, err = h["Pause"](map[string]string{"InstanceID": "0"})
	assert.NoError(t, err)

	out, _ := h["GetTransportInfo"](map[string]string{"InstanceID": "0"})
	assert.Equal(t, "PAUSED_PLAYBACK", out["CurrentTransportState"])
}

func TestNextWithNoQueuedTrackStopsAndSucceeds(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	h["Play"](map[string]string{"InstanceID": "0"})

	out, err := h["Next"](map[string]string{"InstanceID": "0"})
	require.NoError(t, err, "Next with nothing queued must still succeed with an empty response")
	assert.Empty(t, out)

	info, _ := h["GetTransportInfo"](map[string]string{"InstanceID": "0"})
	assert.Equal(t, "STOPPED", info["CurrentTransportState"])
}

func TestNextAdvancesToQueuedTrack(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	h["SetNextAVTransportURI"](map[string]string{"InstanceID": "0", "NextURI": "http://host/b.mp4"})
	h["Play"](map[string]string{"InstanceID": "0"})

	_, err := h["Next"](map[string]string{"InstanceID": "0"})
	require.NoError(t, err)

	info, _ := h["GetTransportInfo"](map[string]string{"InstanceID": "0"})
	assert.Equal(t, "PLAYING", info["CurrentTransportState"])

	pos, _ := h["GetPositionInfo"](map[string]string{"InstanceID": "0"})
	assert.Equal(t, "http://host/b.mp4", pos["TrackURI"])
}

func TestStopFromInvalidStateFails(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	_, err := h["Stop"](map[string]string{"InstanceID": "0"})
	assert.Error(t, err)
}

func TestUnknownInstanceIDFailsReadActions(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	_, err := h["GetTransportInfo"](map[string]string{"InstanceID": "7"})
	assert.Error(t, err)
}

func TestSeekTrackNr(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	h["SetNextAVTransportURI"](map[string]string{"InstanceID": "0", "NextURI": "http://host/b.mp4"})
	h["Play"](map[string]string{"InstanceID": "0"})

	_, err := h["Seek"](map[string]string{"InstanceID": "0", "Unit": "TRACK_NR", "Target": "2"})
	require.NoError(t, err)

	pos, _ := h["GetPositionInfo"](map[string]string{"InstanceID": "0"})
	assert.Equal(t, "http://host/b.mp4", pos["TrackURI"])
}

func TestSeekUnsupportedUnitFails(t *testing.T) {
	m := newTestManager()
	h := m.Handlers()
	h["SetAVTransportURI"](map[string]string{"InstanceID": "0", "CurrentURI": "http://host/a.mp4"})
	h["Play"](map[string]string{"InstanceID": "0"})

	_, err := h["Seek"](map[string]string{"InstanceID": "0", "Unit": "X_DLNA_GAP", "Target": "1"})
	assert.Error(t, err)
}
