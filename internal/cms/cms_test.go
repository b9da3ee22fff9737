package cms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnasrv/dlna/internal/profile"
	"github.com/dlnasrv/dlna/internal/resource"
	"github.com/dlnasrv/dlna/internal/vfstree"
)

type fakeProtocol struct{}

func (fakeProtocol) Name() string { return "http-get" }
func (fakeProtocol) Net() string  { return "*" }
func (fakeProtocol) CreateResource(item *profile.MediaItem, id uint32) resource.Resource {
	return resource.Resource{
		URLFunc:      func(host, virtualDir string) string { return "http://" + host + virtualDir },
		ProtocolInfo: resource.ProtocolInfo{Protocol: "http-get", Network: "*", MIME: item.Profile.MIME},
	}
}
func (fakeProtocol) Init(install func(pattern string, handler any)) {}

func TestGetProtocolInfoDedupesAndJoins(t *testing.T) {
	tree := vfstree.New(vfstree.Config{Protocols: []resource.Protocol{fakeProtocol{}}})
	_, err := tree.AddResource("a.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)
	_, err = tree.AddResource("b.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)

	s := &Service{Tree: tree}
	out, err := s.getProtocolInfo(nil)
	require.NoError(t, err)
	assert.Equal(t, "http-get:*:video/mp4:*", out["Source"])
	assert.Equal(t, "", out["Sink"])
}

func TestGetCurrentConnectionIDsIsFixed(t *testing.T) {
	s := &Service{}
	out, err := s.getCurrentConnectionIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, "0", out["ConnectionIDs"])
}

func TestGetCurrentConnectionInfoRejectsUnknownID(t *testing.T) {
	s := &Service{}
	_, err := s.getCurrentConnectionInfo(map[string]string{"ConnectionID": "5"})
	assert.Error(t, err)
}

func TestGetCurrentConnectionInfoDefaultConnection(t *testing.T) {
	s := &Service{}
	out, err := s.getCurrentConnectionInfo(map[string]string{"ConnectionID": "0"})
	require.NoError(t, err)
	assert.Equal(t, "Output", out["Direction"])
	assert.Equal(t, "OK", out["Status"])
}
