package types

import (
	"errors"
	"fmt"
)

// Common errors. All of these are expected, recoverable-by-caller
// conditions; the dispatcher maps them to protocol status codes and
// never treats them as fatal.
var (
	ErrNotFound         = errors.New("path does not exist")
	ErrNotAContainer    = errors.New("cannot list a leaf value as a directory")
	ErrUnknownSession   = errors.New("unknown enumeration session")
	ErrEmptyOnFirstCall = errors.New("buffer too small to hold a single entry")
	ErrOutOfRange       = errors.New("read offset past end of payload")
	ErrValueNotFound    = errors.New("value no longer present in the store")
)

// ResolveError reports the component at which a virtual path failed
// to resolve against the store.
type ResolveError struct {
	Component string // the offending path component, as supplied
	Index     int    // zero-based position within the path
	Err       error  // ErrNotFound or ErrNotAContainer
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q (component %d): %v", e.Component, e.Index, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// SessionError wraps a session-table failure with the session it
// concerns.
type SessionError struct {
	ID  SessionID
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.ID, e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// ReadError reports a file-data read failure for a leaf payload.
type ReadError struct {
	Offset uint64
	Size   uint64 // payload length at the time of the read, if known
	Err    error  // ErrOutOfRange or ErrValueNotFound
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read at offset %d (payload %d bytes): %v", e.Offset, e.Size, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
