// Package avts implements the AVTransport service (spec §4.H): a
// multi-instance playback state machine with a playlist, a per-instance
// playback thread, and GENA LastChange eventing.
package avts

// TransportState is one of the fixed AVTransport:1 states (spec §4.H).
type TransportState int

const (
	NoMediaPresent TransportState = iota
	Stopped
	Playing
	PausedPlayback
	Transitioning
	Recording
	Shutdown
)

func (s TransportState) String() string {
	switch s {
	case NoMediaPresent:
		return "NO_MEDIA_PRESENT"
	case Stopped:
		return "STOPPED"
	case Playing:
		return "PLAYING"
	case PausedPlayback:
		return "PAUSED_PLAYBACK"
	case Transitioning:
		return "TRANSITIONING"
	case Recording:
		return "RECORDING"
	case Shutdown:
		return "SHUTDOWN"
	default:
		return "STOPPED"
	}
}

// TransportStatus is the companion OK/ERROR_OCCURRED status variable.
type TransportStatus int

const (
	StatusOK TransportStatus = iota
	StatusError
)

func (s TransportStatus) String() string {
	if s == StatusError {
		return "ERROR_OCCURRED"
	}
	return "OK"
}

// allowedTransitions encodes the transition table of spec §4.H: which
// states a Play/Pause/Stop/Seek/Next/Previous action is legal from.
var allowedTransitions = map[string]map[TransportState]bool{
	"Play": {
		Stopped: true, PausedPlayback: true, Playing: true,
	},
	"Pause": {
		Playing: true,
	},
	"Stop": {
		Playing: true, PausedPlayback: true, Transitioning: true, Recording: true,
	},
	"Seek": {
		Playing: true, PausedPlayback: true, Stopped: true,
	},
	"Next": {
		Playing: true, PausedPlayback: true,
	},
	"Previous": {
		Playing: true, PausedPlayback: true,
	},
}

// canTransition reports whether action is legal to invoke from the current
// state (spec §4.H's transition table; TRANSITIONING/SHUTDOWN/NO_MEDIA_PRESENT
// reject everything not explicitly listed above).
func canTransition(action string, from TransportState) bool {
	allowed, ok := allowedTransitions[action]
	if !ok {
		return true
	}
	return allowed[from]
}
