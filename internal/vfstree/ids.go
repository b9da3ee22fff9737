package vfstree

import "hash/crc32"

// ID is a VFS object identifier (spec §3). 0 is always the root container.
type ID = uint32

// RootID is the id of the tree's root container.
const RootID ID = 0

// idAllocator implements the id-assignment scheme of spec §3: a base
// counter (1, or 100001 in Xbox-interop mode), with path-hinted
// allocations combined via CRC32 and linear-probed until free.
type idAllocator struct {
	next ID
	used map[ID]bool
}

func newIDAllocator(xboxMode bool) *idAllocator {
	base := ID(1)
	if xboxMode {
		base = 100001
	}
	return &idAllocator{next: base, used: map[ID]bool{RootID: true}}
}

// allocate returns a fresh, unused id. With a non-empty pathHint, the
// starting point is CRC32(pathHint); otherwise it's the rolling base
// counter. Either way, collisions are resolved by linear probing.
func (a *idAllocator) allocate(pathHint string) ID {
	var id ID
	if pathHint != "" {
		id = crc32.ChecksumIEEE([]byte(pathHint))
		if id == RootID {
			id = 1
		}
		for a.used[id] {
			id++
			if id == RootID {
				id = 1
			}
		}
		a.used[id] = true
		return id
	}
	id = a.next
	for a.used[id] {
		id++
		if id == RootID {
			id = 1
		}
	}
	a.used[id] = true
	a.next = id + 1
	return id
}

// markUsed records an externally-chosen id (requestedID on add_container) as
// in use.
func (a *idAllocator) markUsed(id ID) {
	a.used[id] = true
}

func (a *idAllocator) isUsed(id ID) bool {
	return a.used[id]
}

// free releases id; it is not handed out again by allocate's rolling
// counter until that counter wraps (spec §3: "removal frees the id",
// Testable Property 2: "the object's id is not re-used until exhaustion").
func (a *idAllocator) free(id ID) {
	delete(a.used, id)
}
