// Package resolve maps virtual paths to store nodes and produces
// directory listings. It is the only component that walks the store,
// always through the name codec, so names the codec filters can
// neither resolve nor appear in a listing.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hivefs/hivefs/internal/codec"
	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// Node is a resolved position in the store.
type Node struct {
	Kind      types.NodeKind
	Container store.ContainerRef // set when Kind == KindContainer
	Leaf      store.LeafRef      // set when Kind == KindLeaf
	Name      string             // encoded name of the final component, "" for the root
	Size      uint64             // payload byte length, 0 for containers
}

// Resolver resolves paths and lists containers against one store.
type Resolver struct {
	store store.Store
	codec *codec.Codec
}

// New returns a Resolver over the given store and codec.
func New(st store.Store, c *codec.Codec) *Resolver {
	return &Resolver{store: st, codec: c}
}

// Resolve walks the path components from the store root. Components
// are matched case-insensitively against the encoded names of
// children; container children shadow leaf children of the same name.
// It fails with a *types.ResolveError naming the first component that
// missed, or the non-terminal component that resolved to a leaf. A
// store fault that is not a miss propagates as-is.
func (r *Resolver) Resolve(components []string) (Node, error) {
	cur := r.store.Root()
	node := Node{Kind: types.KindContainer, Container: cur}

	for i, comp := range components {
		containers, leaves, err := r.store.ListChildren(cur)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				// The container vanished mid-walk; surface as a miss
				// at this component.
				return Node{}, &types.ResolveError{Component: comp, Index: i, Err: types.ErrNotFound}
			}
			// A store fault is not a miss; let the caller see it.
			return Node{}, fmt.Errorf("list children at %q: %w", comp, err)
		}

		want := r.codec.Decode(comp)
		if name, ok := r.matchContainer(containers, want); ok {
			cur = cur.Child(name)
			encoded, _ := r.codec.Encode(name)
			node = Node{Kind: types.KindContainer, Container: cur, Name: encoded}
			continue
		}
		if leaf, ok := r.matchLeaf(leaves, want); ok {
			if i != len(components)-1 {
				return Node{}, &types.ResolveError{Component: comp, Index: i, Err: types.ErrNotAContainer}
			}
			encoded, _ := r.codec.Encode(leaf.Name)
			return Node{
				Kind: types.KindLeaf,
				Leaf: cur.Leaf(leaf.Name),
				Name: encoded,
				Size: leaf.Size,
			}, nil
		}
		return Node{}, &types.ResolveError{Component: comp, Index: i, Err: types.ErrNotFound}
	}
	return node, nil
}

// matchContainer finds the child container whose encoded name equals
// want case-insensitively. Children the codec filters cannot match.
func (r *Resolver) matchContainer(containers []string, want string) (string, bool) {
	for _, name := range containers {
		encoded, ok := r.codec.Encode(name)
		if ok && strings.EqualFold(encoded, want) {
			return name, true
		}
	}
	return "", false
}

func (r *Resolver) matchLeaf(leaves []store.LeafInfo, want string) (store.LeafInfo, bool) {
	for _, leaf := range leaves {
		encoded, ok := r.codec.Encode(leaf.Name)
		if ok && strings.EqualFold(encoded, want) {
			return leaf, true
		}
	}
	return store.LeafInfo{}, false
}
