package avts

import "github.com/dlnasrv/dlna/upnp"

func arg(name, dir, stateVar string) upnp.Argument {
	return upnp.Argument{Name: name, Direction: dir, RelatedStateVariable: stateVar}
}

// Actions is the SCPD action table for AVTransport:1.
func Actions() []upnp.Action {
	instanceIn := arg("InstanceID", "in", "A_ARG_TYPE_InstanceID")
	return []upnp.Action{
		{Name: "SetAVTransportURI", Arguments: []upnp.Argument{
			instanceIn,
			arg("CurrentURI", "in", "AVTransportURI"),
			arg("CurrentURIMetaData", "in", "AVTransportURIMetaData"),
		}},
		{Name: "SetNextAVTransportURI", Arguments: []upnp.Argument{
			instanceIn,
			arg("NextURI", "in", "NextAVTransportURI"),
			arg("NextURIMetaData", "in", "NextAVTransportURIMetaData"),
		}},
		{Name: "GetMediaInfo", Arguments: []upnp.Argument{
			instanceIn,
			arg("NrTracks", "out", "NumberOfTracks"),
			arg("MediaDuration", "out", "CurrentMediaDuration"),
			arg("CurrentURI", "out", "AVTransportURI"),
			arg("CurrentURIMetaData", "out", "AVTransportURIMetaData"),
			arg("NextURI", "out", "NextAVTransportURI"),
			arg("NextURIMetaData", "out", "NextAVTransportURIMetaData"),
			arg("PlayMedium", "out", "PlaybackStorageMedium"),
			arg("RecordMedium", "out", "RecordStorageMedium"),
			arg("WriteStatus", "out", "RecordMediumWriteStatus"),
		}},
		{Name: "GetTransportInfo", Arguments: []upnp.Argument{
			instanceIn,
			arg("CurrentTransportState", "out", "TransportState"),
			arg("CurrentTransportStatus", "out", "TransportStatus"),
			arg("CurrentSpeed", "out", "TransportPlaySpeed"),
		}},
		{Name: "GetPositionInfo", Arguments: []upnp.Argument{
			instanceIn,
			arg("Track", "out", "CurrentTrack"),
			arg("TrackDuration", "out", "CurrentTrackDuration"),
			arg("TrackMetaData", "out", "CurrentTrackMetaData"),
			arg("TrackURI", "out", "CurrentTrackURI"),
			arg("RelTime", "out", "RelativeTimePosition"),
			arg("AbsTime", "out", "AbsoluteTimePosition"),
			arg("RelCount", "out", "RelativeCounterPosition"),
			arg("AbsCount", "out", "AbsoluteCounterPosition"),
		}},
		{Name: "GetDeviceCapabilities", Arguments: []upnp.Argument{
			instanceIn,
			arg("PlayMedia", "out", "PossiblePlaybackStorageMedia"),
			arg("RecMedia", "out", "PossibleRecordStorageMedia"),
			arg("RecQualityModes", "out", "PossibleRecordQualityModes"),
		}},
		{Name: "GetTransportSettings", Arguments: []upnp.Argument{
			instanceIn,
			arg("PlayMode", "out", "CurrentPlayMode"),
			arg("RecQualityMode", "out", "CurrentRecordQualityMode"),
		}},
		{Name: "GetCurrentTransportActions", Arguments: []upnp.Argument{
			instanceIn,
			arg("Actions", "out", "CurrentTransportActions"),
		}},
		{Name: "Play", Arguments: []upnp.Argument{instanceIn, arg("Speed", "in", "TransportPlaySpeed")}},
		{Name: "Pause", Arguments: []upnp.Argument{instanceIn}},
		{Name: "Stop", Arguments: []upnp.Argument{instanceIn}},
		{Name: "Seek", Arguments: []upnp.Argument{
			instanceIn,
			arg("Unit", "in", "A_ARG_TYPE_SeekMode"),
			arg("Target", "in", "A_ARG_TYPE_SeekTarget"),
		}},
		{Name: "Next", Arguments: []upnp.Argument{instanceIn}},
		{Name: "Previous", Arguments: []upnp.Argument{instanceIn}},
	}
}

// StateVariables is the SCPD state-variable table for AVTransport:1.
func StateVariables() []upnp.StateVariable {
	return []upnp.StateVariable{
		{Name: "TransportState", DataType: "string", AllowedValues: []string{
			"STOPPED", "PLAYING", "TRANSITIONING", "PAUSED_PLAYBACK", "RECORDING", "NO_MEDIA_PRESENT",
		}},
		{Name: "TransportStatus", DataType: "string", AllowedValues: []string{"OK", "ERROR_OCCURRED"}},
		{Name: "PlaybackStorageMedium", DataType: "string"},
		{Name: "RecordStorageMedium", DataType: "string"},
		{Name: "PossiblePlaybackStorageMedia", DataType: "string"},
		{Name: "PossibleRecordStorageMedia", DataType: "string"},
		{Name: "CurrentPlayMode", DataType: "string", AllowedValues: []string{"NORMAL"}},
		{Name: "TransportPlaySpeed", DataType: "string"},
		{Name: "RecordMediumWriteStatus", DataType: "string"},
		{Name: "CurrentRecordQualityMode", DataType: "string"},
		{Name: "PossibleRecordQualityModes", DataType: "string"},
		{Name: "NumberOfTracks", DataType: "ui4"},
		{Name: "CurrentTrack", DataType: "ui4"},
		{Name: "CurrentTrackDuration", DataType: "string"},
		{Name: "CurrentMediaDuration", DataType: "string"},
		{Name: "CurrentTrackMetaData", DataType: "string"},
		{Name: "CurrentTrackURI", DataType: "string"},
		{Name: "AVTransportURI", DataType: "string"},
		{Name: "AVTransportURIMetaData", DataType: "string"},
		{Name: "NextAVTransportURI", DataType: "string"},
		{Name: "NextAVTransportURIMetaData", DataType: "string"},
		{Name: "RelativeTimePosition", DataType: "string"},
		{Name: "AbsoluteTimePosition", DataType: "string"},
		{Name: "RelativeCounterPosition", DataType: "i4"},
		{Name: "AbsoluteCounterPosition", DataType: "i4"},
		{Name: "CurrentTransportActions", DataType: "string"},
		{Name: "LastChange", DataType: "string", SendEvents: true},
		{Name: "A_ARG_TYPE_SeekMode", DataType: "string", AllowedValues: []string{"TRACK_NR", "REL_TIME", "ABS_TIME"}},
		{Name: "A_ARG_TYPE_SeekTarget", DataType: "string"},
		{Name: "A_ARG_TYPE_InstanceID", DataType: "ui4"},
	}
}
