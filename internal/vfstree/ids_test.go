package vfstree

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorBaseCounter(t *testing.T) {
	a := newIDAllocator(false)
	first := a.allocate("")
	second := a.allocate("")
	assert.Equal(t, ID(1), first)
	assert.Equal(t, ID(2), second)
}

func TestIDAllocatorXboxBase(t *testing.T) {
	a := newIDAllocator(true)
	assert.Equal(t, ID(100001), a.allocate(""))
}

func TestIDAllocatorPathHintIsCRC32(t *testing.T) {
	a := newIDAllocator(false)
	id := a.allocate("file:///movies/foo.mp4")
	want := crc32.ChecksumIEEE([]byte("file:///movies/foo.mp4"))
	assert.Equal(t, ID(want), id)
}

func TestIDAllocatorPathHintCollisionProbes(t *testing.T) {
	a := newIDAllocator(false)
	hint := "file:///movies/foo.mp4"
	first := a.allocate(hint)
	second := a.allocate(hint)
	assert.NotEqual(t, first, second, "re-allocating the same hint must probe past the collision")
}

func TestIDAllocatorFreeAllowsReuse(t *testing.T) {
	a := newIDAllocator(false)
	id := a.allocate("")
	a.free(id)
	assert.False(t, a.isUsed(id))
}

func TestIDAllocatorMarkUsedBlocksFutureAllocation(t *testing.T) {
	a := newIDAllocator(false)
	a.markUsed(1)
	next := a.allocate("")
	assert.NotEqual(t, ID(1), next)
}
