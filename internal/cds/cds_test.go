package cds

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

func newTestService() *Service {
	tree := vfstree.New(vfstree.Config{Protocols: []resource.Protocol{fakeProtocol{}}})
	return &Service{Tree: tree}
}

func TestGetSearchAndSortCapabilities(t *testing.T) {
	s := newTestService()
	out, err := s.getSearchCapabilities(nil)
	require.NoError(t, err)
	assert.Equal(t, "upnp:class,res@protocolInfo", out["SearchCaps"])

	out, err = s.getSortCapabilities(nil)
	require.NoError(t, err)
	assert.Equal(t, "dc:title", out["SortCaps"])
}

func TestGetSystemUpdateIDIsZeroPadded(t *testing.T) {
	s := newTestService()
	_, err := s.Tree.AddResource("a.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)
	_, err = s.Tree.AddResource("b.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)

	out, err := s.getSystemUpdateID(nil)
	require.NoError(t, err)
	assert.Equal(t, "0000000002", out["Id"])
}

func TestBrowseDirectChildrenReturnsZeroPaddedCounters(t *testing.T) {
	s := newTestService()
	_, err := s.Tree.AddResource("a.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)

	out, err := s.browse(map[string]string{
		"ObjectID": "0", "BrowseFlag": "BrowseDirectChildren", "Filter": "*",
	})
	require.NoError(t, err)
	assert.Equal(t, "0000000001", out["NumberReturned"])
	assert.Equal(t, "0000000001", out["TotalMatches"])
	assert.Contains(t, out["Result"], "a.mp4")
}

func TestBrowseMetadataRejectsNonZeroStartingIndex(t *testing.T) {
	s := newTestService()
	_, err := s.browse(map[string]string{
		"ObjectID": "0", "BrowseFlag": "BrowseMetadata", "StartingIndex": "1",
	})
	assert.Error(t, err)
}

func TestBrowseUnknownObjectMapsToNoSuchObject(t *testing.T) {
	s := newTestService()
	_, err := s.browse(map[string]string{"ObjectID": "999", "BrowseFlag": "BrowseDirectChildren"})
	assert.Error(t, err)
}

func TestBrowseUnknownFlagFails(t *testing.T) {
	s := newTestService()
	_, err := s.browse(map[string]string{"ObjectID": "0", "BrowseFlag": "Bogus"})
	assert.Error(t, err)
}

func TestSearchReturnsZeroPaddedCounters(t *testing.T) {
	s := newTestService()
	_, err := s.Tree.AddResource("a.mp4", &profile.MediaItem{Profile: profile.Profile{MIME: "video/mp4"}}, vfstree.RootID)
	require.NoError(t, err)

	out, err := s.search(map[string]string{"ContainerID": "0", "SearchCriteria": "*", "Filter": "*"})
	require.NoError(t, err)
	assert.Equal(t, "0000000001", out["TotalMatches"])
}
