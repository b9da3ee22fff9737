// Package dlna implements the small wire-format pieces that DLNA layers on
// top of plain UPnP-AV: the protocolInfo "4th field" (DLNA.ORG_* parameters),
// the handful of HTTP headers DLNA clients use for time-based seeking, and
// parsing for the NPT (normal play time) range syntax.
package dlna

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HTTP headers/domains used by DLNA-aware clients and servers.
const (
	TimeSeekRangeDomain  = "TimeSeekRange.dlna.org"
	ContentFeaturesDomain = "contentFeatures.dlna.org"
	TransferModeDomain    = "transferMode.dlna.org"
)

// Bits of DLNA.ORG_FLAGS. Only the ones the core needs to set are named; the
// rest of the 32-bit field is always zero, followed by 24 zero padding bits
// per the DLNA spec's hex-encoding convention.
const (
	FlagSenderPaced               uint32 = 1 << 31
	FlagTimeBasedSeek             uint32 = 1 << 30
	FlagByteBasedSeek             uint32 = 1 << 29
	FlagPlayContainer             uint32 = 1 << 28
	FlagS0Increasing              uint32 = 1 << 27
	FlagSnIncreasing              uint32 = 1 << 26
	FlagInterativityControllable  uint32 = 1 << 24
	FlagBackgroundTransferMode    uint32 = 1 << 22
	FlagConnectionStall           uint32 = 1 << 21
	FlagDLNAv15                   uint32 = 1 << 20
)

// ContentFeatures builds the "other" (4th) field of a protocolInfo string:
// the DLNA.ORG_PN, DLNA.ORG_OP, DLNA.ORG_CI and DLNA.ORG_FLAGS fields.
// DLNA.ORG_PS is not part of it; PerResponseHeader prepends that.
type ContentFeatures struct {
	// ProfileName is the DLNA profile id (DLNA.ORG_PN), omitted if empty.
	ProfileName string
	// SupportTimeSeek advertises that TimeSeekRange.dlna.org is honoured.
	SupportTimeSeek bool
	// SupportRange advertises that HTTP byte-range requests are honoured.
	SupportRange bool
	// Transcoded marks the resource as a transcode of the original (DLNA.ORG_CI=1).
	Transcoded bool
	// Flags, when non-empty, overrides the computed DLNA.ORG_FLAGS hex value.
	Flags string
}

func (cf ContentFeatures) flagsWord() uint32 {
	var f uint32
	if cf.SupportTimeSeek {
		f |= FlagTimeBasedSeek
	}
	if cf.SupportRange {
		f |= FlagByteBasedSeek
	}
	f |= FlagDLNAv15
	return f
}

// op renders DLNA.ORG_OP as two decimal digits: the first is time-seek
// support, the second is byte-range support.
func (cf ContentFeatures) op() string {
	ts, rg := 0, 0
	if cf.SupportTimeSeek {
		ts = 1
	}
	if cf.SupportRange {
		rg = 1
	}
	return fmt.Sprintf("%d%d", ts, rg)
}

// String renders the semicolon-joined DLNA.ORG_* parameter list that forms
// the 4th (OTHER) field of a protocolInfo string.
func (cf ContentFeatures) String() string {
	var parts []string
	if cf.ProfileName != "" {
		parts = append(parts, "DLNA.ORG_PN="+cf.ProfileName)
	}
	ci := "0"
	if cf.Transcoded {
		ci = "1"
	}
	parts = append(parts, "DLNA.ORG_OP="+cf.op())
	parts = append(parts, "DLNA.ORG_CI="+ci)
	flags := cf.Flags
	if flags == "" {
		flags = fmt.Sprintf("%08X%024d", cf.flagsWord(), 0)
	}
	parts = append(parts, "DLNA.ORG_FLAGS="+flags)
	return strings.Join(parts, ";")
}

// PerResponseHeader renders ContentFeatures prefixed with DLNA.ORG_PS (play speed).
// Used when a GET/HEAD response needs to state the speed it is served at,
// separate from the protocolInfo advertised at browse time.
func PerResponseHeader(cf ContentFeatures, speed string) string {
	if speed == "" {
		speed = "1"
	}
	return "DLNA.ORG_PS=" + speed + ";" + cf.String()
}

// NPTRange is a normal-play-time range, as used in the TimeSeekRange.dlna.org
// request/response header.
type NPTRange struct {
	Start, End time.Duration
}

// ParseNPTRange parses "12.3-45.6" or "12.3-" style NPT ranges (the part
// following "npt=" in a TimeSeekRange.dlna.org header).
func ParseNPTRange(s string) (r NPTRange, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return r, errors.New("dlna: bad NPT range: missing '-'")
	}
	r.Start, err = parseNPT(parts[0])
	if err != nil {
		return r, fmt.Errorf("dlna: bad NPT range start: %w", err)
	}
	if parts[1] != "" {
		r.End, err = parseNPT(parts[1])
		if err != nil {
			return r, fmt.Errorf("dlna: bad NPT range end: %w", err)
		}
	}
	return r, nil
}

func parseNPT(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		// HH:MM:SS.fff
		var h, m int
		var sec float64
		n, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec)
		if err != nil || n != 3 {
			return 0, errors.New("bad HH:MM:SS.fff")
		}
		total := float64(h)*3600 + float64(m)*60 + sec
		return time.Duration(total * float64(time.Second)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}

// FormatDuration renders a duration as the DIDL-Lite/AVTS "HH:MM:SS." style
// string used for Properties.Duration and GetPositionInfo's track duration.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d.", h, m, s)
}
