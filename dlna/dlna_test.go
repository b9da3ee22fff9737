package dlna

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentFeaturesString(t *testing.T) {
	cf := ContentFeatures{
		ProfileName:     "AVC_MP4_BL_CIF15_AAC_520",
		SupportTimeSeek: true,
		SupportRange:    true,
	}
	s := cf.String()
	assert.Contains(t, s, "DLNA.ORG_PN=AVC_MP4_BL_CIF15_AAC_520")
	assert.Contains(t, s, "DLNA.ORG_OP=11")
	assert.Contains(t, s, "DLNA.ORG_CI=0")
	assert.Contains(t, s, "DLNA.ORG_FLAGS=")
}

func TestContentFeaturesNoProfileName(t *testing.T) {
	cf := ContentFeatures{SupportTimeSeek: false, SupportRange: true}
	s := cf.String()
	assert.NotContains(t, s, "DLNA.ORG_PN=")
	assert.Contains(t, s, "DLNA.ORG_OP=01")
}

func TestContentFeaturesTranscoded(t *testing.T) {
	cf := ContentFeatures{Transcoded: true}
	assert.Contains(t, cf.String(), "DLNA.ORG_CI=1")
}

func TestPerResponseHeaderDefaultsSpeed(t *testing.T) {
	cf := ContentFeatures{SupportRange: true}
	h := PerResponseHeader(cf, "")
	assert.Contains(t, h, "DLNA.ORG_PS=1;")
}

func TestParseNPTRangeOpenEnded(t *testing.T) {
	r, err := ParseNPTRange("12.3-")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(12.3*float64(time.Second)), r.Start)
	assert.Equal(t, time.Duration(0), r.End)
}

func TestParseNPTRangeClosed(t *testing.T) {
	r, err := ParseNPTRange("1:02:03.5-1:02:10")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3500*time.Millisecond, r.Start)
	assert.Equal(t, time.Hour+2*time.Minute+10*time.Second, r.End)
}

func TestParseNPTRangeMissingDash(t *testing.T) {
	_, err := ParseNPTRange("12.3")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:02:03.", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:00:00.", FormatDuration(-5*time.Second))
}
