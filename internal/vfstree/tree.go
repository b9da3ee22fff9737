// Package vfstree implements the Virtual File System (spec §4.D): a
// hierarchical object tree of containers and resources with stable numeric
// ids, DIDL-Lite serialisation and Browse/Search semantics.
package vfstree

import (
	"fmt"
	"sync"

	"github.com/anacrolix/generics"
	"github.com/anacrolix/log"

	"github.com/dlnasrv/dlna/internal/profile"
	"github.com/dlnasrv/dlna/internal/resource"
)

// ContainerClass distinguishes a plain folder from an album-like grouping;
// both map to upnp:class object.container.* (spec §3).
type ContainerClass int

const (
	ClassFolder ContainerClass = iota
	ClassCollection
)

// Container is the Container variant of VfsObject (spec §3).
type Container struct {
	Title      string
	MediaClass ContainerClass
	Children   []ID
	UpdateID   uint32
	ParentID   generics.Option[ID]
}

// ResourceObject is the Resource variant of VfsObject (spec §3): the owned
// MediaItem plus one Resource per registered transport protocol.
type ResourceObject struct {
	Title     string
	Item      *profile.MediaItem
	Resources []resource.Resource
	ParentID  ID
}

// Object is a tagged union of Container and ResourceObject; exactly one of
// the two fields is non-nil (spec §3, §9's "tagged variants" note).
type Object struct {
	ID        ID
	Container *Container
	Resource  *ResourceObject
}

// IsContainer reports whether this object is a Container.
func (o *Object) IsContainer() bool { return o.Container != nil }

// Title returns the display title regardless of variant.
func (o *Object) Title() string {
	if o.Container != nil {
		return o.Container.Title
	}
	return o.Resource.Title
}

// parentID returns the object's parent, or (0, false) for the root.
func (o *Object) parentID() (ID, bool) {
	if o.Container != nil {
		return o.Container.ParentID.Value, o.Container.ParentID.Ok
	}
	return o.Resource.ParentID, true
}

// Tree is the Virtual File System: an id-keyed map owning the object graph
// plus per-container ordered child lists (spec §9's "avoid raw cyclic
// pointers" guidance — no object holds a pointer to its parent, only an
// id looked up through the map).
type Tree struct {
	mu        sync.Mutex
	objects   map[ID]*Object
	alloc     *idAllocator
	protocols []resource.Protocol
	dlnaMode  bool
	host      func() string
	virtualDir string
	logger    log.Logger
}

// Config bundles the construction-time parameters for a Tree.
type Config struct {
	XboxInteropMode bool
	DLNAMode        bool
	Protocols       []resource.Protocol
	Host            func() string
	VirtualDir      string
	Logger          log.Logger
}

// New builds an empty Tree with just the root container present.
func New(cfg Config) *Tree {
	t := &Tree{
		objects:    map[ID]*Object{},
		alloc:      newIDAllocator(cfg.XboxInteropMode),
		protocols:  cfg.Protocols,
		dlnaMode:   cfg.DLNAMode,
		host:       cfg.Host,
		virtualDir: cfg.VirtualDir,
		logger:     cfg.Logger,
	}
	t.objects[RootID] = &Object{ID: RootID, Container: &Container{Title: "root", MediaClass: ClassFolder}}
	return t
}

// ErrNoSuchObject is returned when an id doesn't resolve to any object.
var ErrNoSuchObject = fmt.Errorf("vfstree: no such object")

// ErrInvalidContainer is returned when an operation expects id to name a
// Container but it doesn't (or doesn't exist).
var ErrInvalidContainer = fmt.Errorf("vfstree: invalid container")

// GetByID looks up an object without copying it; callers must not mutate
// Children/Resources directly.
func (t *Tree) GetByID(id ID) (*Object, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.objects[id]
	return o, ok
}

// AddContainer implements add_container (spec §4.D): requestedID==0 assigns
// a fresh id; a non-zero requestedID that's already in use makes the call
// idempotent (returns the existing id without creating anything new).
func (t *Tree) AddContainer(name string, requestedID ID, parentID ID) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if requestedID != RootID {
		if _, ok := t.objects[requestedID]; ok {
			return requestedID, nil
		}
	}
	parent, ok := t.objects[parentID]
	if !ok || !parent.IsContainer() {
		return 0, ErrInvalidContainer
	}

	var id ID
	if requestedID != RootID {
		id = requestedID
		t.alloc.markUsed(id)
	} else {
		id = t.alloc.allocate("")
	}
	t.objects[id] = &Object{
		ID: id,
		Container: &Container{
			Title:      name,
			MediaClass: ClassFolder,
			ParentID:   generics.Some(parentID),
		},
	}
	parent.Container.Children = append(parent.Container.Children, id)
	parent.Container.UpdateID++
	return id, nil
}

// AddResource implements add_resource (spec §4.D): always assigns a fresh
// id (via the CRC32 path-hint scheme, hinted by the item's URL), and
// synthesises one resource.Resource per registered transport protocol.
func (t *Tree) AddResource(name string, item *profile.MediaItem, parentID ID) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, ok := t.objects[parentID]
	if !ok || !parent.IsContainer() {
		return 0, ErrInvalidContainer
	}

	id := t.alloc.allocate(item.URL)
	resources := make([]resource.Resource, 0, len(t.protocols))
	for _, proto := range t.protocols {
		r := proto.CreateResource(item, id)
		if t.dlnaMode {
			r.ProtocolInfo.Other = resource.DLNAOther(item.ProfileID, r.Info.SupportsTimeSeek, r.Info.SupportsByteRange)
		}
		if props, ok := item.Properties.Get(); ok {
			r.Properties = props
		}
		resources = append(resources, r)
	}

	t.objects[id] = &Object{
		ID: id,
		Resource: &ResourceObject{
			Title:     name,
			Item:      item,
			Resources: resources,
			ParentID:  parentID,
		},
	}
	parent.Container.Children = append(parent.Container.Children, id)
	parent.Container.UpdateID++
	return id, nil
}

// RemoveByID implements remove_by_id (spec §4.D): detaches from the parent
// (bumping its updateID), then recursively frees the subtree.
func (t *Tree) RemoveByID(id ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == RootID {
		return fmt.Errorf("vfstree: cannot remove root")
	}
	obj, ok := t.objects[id]
	if !ok {
		return ErrNoSuchObject
	}
	parentID, hasParent := obj.parentID()
	if hasParent {
		if parent, ok := t.objects[parentID]; ok {
			parent.Container.Children = removeID(parent.Container.Children, id)
			parent.Container.UpdateID++
		}
	}
	t.freeRecursive(id)
	return nil
}

func (t *Tree) freeRecursive(id ID) {
	obj, ok := t.objects[id]
	if !ok {
		return
	}
	if obj.IsContainer() {
		for _, childID := range obj.Container.Children {
			t.freeRecursive(childID)
		}
	}
	delete(t.objects, id)
	t.alloc.free(id)
}

func removeID(ids []ID, target ID) []ID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// RootUpdateID is the current SystemUpdateID: the root container's
// updateID (spec §4.F's GetSystemUpdateID).
func (t *Tree) RootUpdateID() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.objects[RootID].Container.UpdateID
}

// IterSources walks every Resource in the tree and returns every
// ProtocolInfo it carries, for ConnectionManager's GetProtocolInfo (spec
// §4.D's iter_sources, §4.G).
func (t *Tree) IterSources() []resource.ProtocolInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []resource.ProtocolInfo
	var walk func(id ID)
	walk = func(id ID) {
		obj := t.objects[id]
		if obj.IsContainer() {
			for _, c := range obj.Container.Children {
				walk(c)
			}
			return
		}
		for _, r := range obj.Resource.Resources {
			out = append(out, r.ProtocolInfo)
		}
	}
	walk(RootID)
	return out
}

// hostAddr exposes the construction-time host callback for the DIDL
// builder's URL synthesis, or "" when none was configured.
func (t *Tree) hostAddr() string {
	if t.host == nil {
		return ""
	}
	return t.host()
}
