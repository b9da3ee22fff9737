package avts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportStateStrings(t *testing.T) {
	assert.Equal(t, "NO_MEDIA_PRESENT", NoMediaPresent.String())
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "PLAYING", Playing.String())
	assert.Equal(t, "PAUSED_PLAYBACK", PausedPlayback.String())
	assert.Equal(t, "TRANSITIONING", Transitioning.String())
	assert.Equal(t, "RECORDING", Recording.String())
	assert.Equal(t, "SHUTDOWN", Shutdown.String())
}

func TestTransportStatusStrings(t *testing.T) {
	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "ERROR_OCCURRED", StatusError.String())
}

func TestCanTransitionPlay(t *testing.T) {
	assert.True(t, canTransition("Play", Stopped))
	assert.True(t, canTransition("Play", PausedPlayback))
	assert.True(t, canTransition("Play", Playing))
	assert.False(t, canTransition("Play", Transitioning))
	assert.False(t, canTransition("Play", NoMediaPresent))
}

func TestCanTransitionPause(t *testing.T) {
	assert.True(t, canTransition("Pause", Playing))
	assert.False(t, canTransition("Pause", Stopped))
}

func TestCanTransitionStop(t *testing.T) {
	assert.True(t, canTransition("Stop", Playing))
	assert.True(t, canTransition("Stop", PausedPlayback))
	assert.True(t, canTransition("Stop", Transitioning))
	assert.False(t, canTransition("Stop", NoMediaPresent))
}

func TestCanTransitionNextPrevious(t *testing.T) {
	assert.True(t, canTransition("Next", Playing))
	assert.True(t, canTransition("Previous", PausedPlayback))
	assert.False(t, canTransition("Next", Stopped))
}

func TestCanTransitionUnknownActionDefaultsAllowed(t *testing.T) {
	assert.True(t, canTransition("GetPositionInfo", Transitioning))
}
