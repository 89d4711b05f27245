// Package boltstore projects a bbolt database as a hive: nested
// buckets are containers, plain key/value pairs are leaves. The
// database is opened read-only and re-queried on every call.
package boltstore

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// Store is a read-only bbolt-backed store.
type Store struct {
	db *bolt.DB
}

// Open opens the database at path read-only. The file must exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		ReadOnly: true,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Root implements store.Store.
func (s *Store) Root() store.ContainerRef {
	return store.ContainerRef{}
}

// ListChildren implements store.Store.
func (s *Store) ListChildren(ref store.ContainerRef) ([]string, []store.LeafInfo, error) {
	var containers []string
	var leaves []store.LeafInfo

	err := s.db.View(func(tx *bolt.Tx) error {
		if len(ref.Path) == 0 {
			// The transaction root holds only buckets.
			return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
				containers = append(containers, string(name))
				return nil
			})
		}

		b, err := descend(tx, ref.Path)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			if v == nil {
				containers = append(containers, string(k))
			} else {
				leaves = append(leaves, store.LeafInfo{Name: string(k), Size: uint64(len(v))})
			}
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return containers, leaves, nil
}

// ReadValueBytes implements store.Store.
func (s *Store) ReadValueBytes(ref store.LeafRef) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if len(ref.Path) == 0 {
			// The transaction root cannot hold plain pairs.
			return fmt.Errorf("value %q: %w", ref.Name, types.ErrValueNotFound)
		}
		b, err := descend(tx, ref.Path)
		if err != nil {
			return fmt.Errorf("parent of %q: %w", ref.Name, types.ErrValueNotFound)
		}
		v := b.Get([]byte(ref.Name))
		if v == nil {
			return fmt.Errorf("value %q: %w", ref.Name, types.ErrValueNotFound)
		}
		// Bolt memory is only valid inside the transaction.
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// descend walks the bucket path inside tx.
func descend(tx *bolt.Tx, path []string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(path[0]))
	if b == nil {
		return nil, fmt.Errorf("container %q: %w", path[0], types.ErrNotFound)
	}
	for _, name := range path[1:] {
		b = b.Bucket([]byte(name))
		if b == nil {
			return nil, fmt.Errorf("container %q: %w", name, types.ErrNotFound)
		}
	}
	return b, nil
}
