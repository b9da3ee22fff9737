package vfstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterStarAllowsEverything(t *testing.T) {
	f := ParseFilter("*")
	assert.True(t, f.Has("res@duration"))
	assert.True(t, f.Has("upnp:album"))
}

func TestParseFilterEmptyBehavesLikeStar(t *testing.T) {
	f := ParseFilter("")
	assert.True(t, f.Has("res@bitrate"))
}

func TestParseFilterAllowList(t *testing.T) {
	f := ParseFilter("res@duration,upnp:album")
	assert.True(t, f.Has("res@duration"))
	assert.True(t, f.Has("upnp:album"))
	assert.False(t, f.Has("res@bitrate"))
}

func TestParseFilterAlwaysEmittedFieldsSurviveAnyFilter(t *testing.T) {
	f := ParseFilter("res@duration")
	assert.True(t, f.Has("dc:title"))
	assert.True(t, f.Has("upnp:class"))
	assert.True(t, f.Has("@id"))
	assert.True(t, f.Has("@parentID"))
	assert.True(t, f.Has("@restricted"))
}

func TestParseFilterTrimsWhitespace(t *testing.T) {
	f := ParseFilter(" res@duration , upnp:album ")
	assert.True(t, f.Has("res@duration"))
	assert.True(t, f.Has("upnp:album"))
}
