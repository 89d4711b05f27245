// Package store defines the read-only accessor contract for the
// hierarchical key/value store behind the projection.
//
// The projection engine is a pure consumer of this interface: it
// lists child nodes and reads raw value payloads, nothing else. Node
// references are native-name paths from the root, resolved fresh on
// every call; no backend handle is ever cached across callbacks.
package store

// ContainerRef references a container node (a key) by its native-name
// path from the root. The zero value references the root itself.
type ContainerRef struct {
	Path []string
}

// Child returns a reference to the named child container.
func (r ContainerRef) Child(name string) ContainerRef {
	path := make([]string, 0, len(r.Path)+1)
	path = append(path, r.Path...)
	return ContainerRef{Path: append(path, name)}
}

// Leaf returns a reference to the named leaf value under this
// container.
func (r ContainerRef) Leaf(name string) LeafRef {
	return LeafRef{Path: r.Path, Name: name}
}

// LeafRef references a leaf node (a value) by its parent container
// path and native value name.
type LeafRef struct {
	Path []string
	Name string
}

// LeafInfo describes one leaf child: its native name and exact
// payload byte length.
type LeafInfo struct {
	Name string
	Size uint64
}

// Store is the upstream accessor the projection queries. All three
// operations are synchronous and read-only. Implementations must be
// safe for concurrent use; callbacks arrive on arbitrary threads.
type Store interface {
	// Root references the store's top-level container.
	Root() ContainerRef

	// ListChildren returns the native names of all child containers
	// and all child leaves of the referenced container. It returns
	// types.ErrNotFound (possibly wrapped) when the container does
	// not exist.
	ListChildren(ref ContainerRef) (containers []string, leaves []LeafInfo, err error)

	// ReadValueBytes returns the raw payload of the referenced leaf.
	// It returns types.ErrValueNotFound (possibly wrapped) when the
	// leaf does not exist, including when it vanished between a
	// listing and the read.
	ReadValueBytes(ref LeafRef) ([]byte, error)
}
