package vfstree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnasrv/dlna/internal/profile"
)

func TestBrowseMetadataOnContainer(t *testing.T) {
	tr := newTestTree()
	id, err := tr.AddContainer("Movies", 0, RootID)
	require.NoError(t, err)

	res, err := tr.BrowseMetadata(id, ParseFilter("*"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.NumberReturned)
	assert.Equal(t, uint32(1), res.TotalMatches)
	assert.Contains(t, res.Result, "Movies")
	assert.Contains(t, res.Result, "<container")
}

func TestBrowseMetadataUnknownID(t *testing.T) {
	tr := newTestTree()
	_, err := tr.BrowseMetadata(999, ParseFilter("*"))
	assert.ErrorIs(t, err, ErrNoSuchObject)
}

func TestBrowseDirectChildrenSortsContainersFirstThenCaseInsensitive(t *testing.T) {
	tr := newTestTree()
	_, err := tr.AddResource("banana.mp4", mediaItem("video/mp4", profile.ClassAV), RootID)
	require.NoError(t, err)
	_, err = tr.AddResource("Apple.mp4", mediaItem("video/mp4", profile.ClassAV), RootID)
	require.NoError(t, err)
	_, err = tr.AddContainer("zebra", 0, RootID)
	require.NoError(t, err)
	_, err = tr.AddContainer("Aardvark", 0, RootID)
	require.NoError(t, err)

	res, err := tr.BrowseDirectChildren(RootID, ParseFilter("*"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), res.NumberReturned)
	assert.Equal(t, uint32(4), res.TotalMatches)

	// containers (Aardvark, zebra) must precede items (Apple.mp4, banana.mp4);
	// within each group, ordering is case-insensitive.
	aardvarkIdx := indexOf(t, res.Result, "Aardvark")
	zebraIdx := indexOf(t, res.Result, "zebra")
	appleIdx := indexOf(t, res.Result, "Apple.mp4")
	bananaIdx := indexOf(t, res.Result, "banana.mp4")

	assert.Less(t, aardvarkIdx, zebraIdx)
	assert.Less(t, zebraIdx, appleIdx)
	assert.Less(t, appleIdx, bananaIdx)
}

func TestBrowseDirectChildrenPagination(t *testing.T) {
	tr := newTestTree()
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		_, err := tr.AddResource(name, mediaItem("video/mp4", profile.ClassAV), RootID)
		require.NoError(t, err)
	}

	res, err := tr.BrowseDirectChildren(RootID, ParseFilter("*"), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), res.NumberReturned)
	assert.Equal(t, uint32(3), res.TotalMatches)
	assert.Contains(t, res.Result, "b.mp4")
	assert.NotContains(t, res.Result, "a.mp4")
	assert.NotContains(t, res.Result, "c.mp4")
}

func TestBrowseDirectChildrenOnNonContainerFails(t *testing.T) {
	tr := newTestTree()
	id, err := tr.AddResource("a.mp4", mediaItem("video/mp4", profile.ClassAV), RootID)
	require.NoError(t, err)

	_, err = tr.BrowseDirectChildren(id, ParseFilter("*"), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidContainer)
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := -1
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0, "expected to find %q in result", needle)
	return idx
}
