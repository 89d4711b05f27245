// Package memory provides an in-process store backend. It backs the
// demo mode, the YAML hive loader and the test suites.
package memory

import (
	"fmt"
	"sync"

	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// Store is a hierarchical key/value tree held in memory. The write
// methods exist to build and mutate fixtures; the projection itself
// only ever uses the read side of the store.Store contract.
type Store struct {
	mu   sync.RWMutex
	root *node
}

type node struct {
	children map[string]*node
	value    []byte
	leaf     bool
}

func newContainer() *node {
	return &node{children: make(map[string]*node)}
}

// New returns an empty store.
func New() *Store {
	return &Store{root: newContainer()}
}

// Root implements store.Store.
func (s *Store) Root() store.ContainerRef {
	return store.ContainerRef{}
}

// ListChildren implements store.Store.
func (s *Store) ListChildren(ref store.ContainerRef) ([]string, []store.LeafInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.walk(ref.Path)
	if err != nil {
		return nil, nil, err
	}

	var containers []string
	var leaves []store.LeafInfo
	for name, child := range n.children {
		if child.leaf {
			leaves = append(leaves, store.LeafInfo{Name: name, Size: uint64(len(child.value))})
		} else {
			containers = append(containers, name)
		}
	}
	return containers, leaves, nil
}

// ReadValueBytes implements store.Store.
func (s *Store) ReadValueBytes(ref store.LeafRef) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, err := s.walk(ref.Path)
	if err != nil {
		return nil, fmt.Errorf("parent of %q: %w", ref.Name, types.ErrValueNotFound)
	}
	child, ok := n.children[ref.Name]
	if !ok || !child.leaf {
		return nil, fmt.Errorf("value %q: %w", ref.Name, types.ErrValueNotFound)
	}
	out := make([]byte, len(child.value))
	copy(out, child.value)
	return out, nil
}

// walk descends the container path. Caller holds s.mu.
func (s *Store) walk(path []string) (*node, error) {
	n := s.root
	for _, name := range path {
		child, ok := n.children[name]
		if !ok || child.leaf {
			return nil, fmt.Errorf("container %q: %w", name, types.ErrNotFound)
		}
		n = child
	}
	return n, nil
}

// PutContainer creates the container at path, creating intermediate
// containers as needed. It is a no-op if the container exists.
func (s *Store) PutContainer(path ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(path)
}

// PutValue sets the leaf payload at path; the last component is the
// value name, everything before it the container path. Intermediate
// containers are created as needed.
func (s *Store) PutValue(data []byte, path ...string) {
	if len(path) == 0 {
		panic("memory: PutValue requires at least a value name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.ensure(path[:len(path)-1])
	buf := make([]byte, len(data))
	copy(buf, data)
	parent.children[path[len(path)-1]] = &node{value: buf, leaf: true}
}

// DeleteValue removes the leaf at path if present. Tests use it to
// reproduce the benign listing/read race.
func (s *Store) DeleteValue(path ...string) {
	if len(path) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.root
	for _, name := range path[:len(path)-1] {
		child, ok := n.children[name]
		if !ok || child.leaf {
			return
		}
		n = child
	}
	if child, ok := n.children[path[len(path)-1]]; ok && child.leaf {
		delete(n.children, path[len(path)-1])
	}
}

// ensure walks to path, creating containers along the way. Caller
// holds s.mu. A leaf in the way is replaced by a container.
func (s *Store) ensure(path []string) *node {
	n := s.root
	for _, name := range path {
		child, ok := n.children[name]
		if !ok || child.leaf {
			child = newContainer()
			n.children[name] = child
		}
		n = child
	}
	return n
}
