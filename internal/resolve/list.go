package resolve

import (
	"sort"
	"strings"

	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// List produces the entries of a container: sub-containers as
// directories, leaves as files, de-duplicated by the filtering codec
// and sorted by encoded name, case-insensitive ascending. The order
// must be stable because enumerations pause and resume against a
// snapshot of this result. Every call re-queries the store; nothing
// is cached.
func (r *Resolver) List(ref store.ContainerRef) ([]types.Entry, error) {
	containers, leaves, err := r.store.ListChildren(ref)
	if err != nil {
		return nil, err
	}

	entries := make([]types.Entry, 0, len(containers)+len(leaves))
	for _, name := range containers {
		encoded, ok := r.codec.Encode(name)
		if !ok {
			continue
		}
		entries = append(entries, types.Entry{Name: encoded, Kind: types.KindContainer})
	}
	for _, leaf := range leaves {
		encoded, ok := r.codec.Encode(leaf.Name)
		if !ok {
			continue
		}
		entries = append(entries, types.Entry{Name: encoded, Kind: types.KindLeaf, Size: leaf.Size})
	}

	sort.Slice(entries, func(i, j int) bool {
		li, lj := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if li != lj {
			return li < lj
		}
		// Byte order as tie-break keeps the order deterministic for
		// names that differ only by case.
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
