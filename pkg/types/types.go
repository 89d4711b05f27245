// Package types defines the core domain types for the hivefs projection engine.
package types

// NodeKind distinguishes the two kinds of store nodes.
type NodeKind string

const (
	// KindContainer is a node with children and no byte payload,
	// projected as a directory.
	KindContainer NodeKind = "container"
	// KindLeaf is a node with a byte payload and no children,
	// projected as a file.
	KindLeaf NodeKind = "leaf"
)

// Entry is one child of a container as seen through the projection:
// the encoded name, the node kind, and the payload size (always 0
// for containers).
type Entry struct {
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
	Size uint64   `json:"size"`
}

// IsDirectory reports whether the entry projects as a directory.
func (e Entry) IsDirectory() bool {
	return e.Kind == KindContainer
}

// PlaceholderInfo is the minimal metadata the virtualization layer
// needs before it can mark a path as resolvable: name, kind and size.
// No timestamps and no security metadata are synthesized.
type PlaceholderInfo struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"is_directory"`
	Size        uint64 `json:"size"`
}

// SessionID identifies one directory enumeration. It is opaque to the
// provider; the virtualization layer allocates it and keys every
// continuation and end call with it.
type SessionID string

// Status is the result code returned across the callback boundary.
// The set maps 1:1 onto the virtualization protocol's codes.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusNotFound           Status = "not-found"
	StatusNotADirectory      Status = "not-a-directory"
	StatusInvalidParameter   Status = "invalid-parameter"
	StatusInsufficientBuffer Status = "insufficient-buffer"
	StatusFailure            Status = "failure"
)

// OK reports whether the status is a success.
func (s Status) OK() bool {
	return s == StatusSuccess
}
