package memory

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

func TestStore_ListChildren(t *testing.T) {
	s := New()
	s.PutValue([]byte("abc"), "Software", "Ver")
	s.PutContainer("Software", "Classes")
	s.PutContainer("Hardware")

	containers, leaves, err := s.ListChildren(s.Root())
	if err != nil {
		t.Fatalf("ListChildren(root) failed: %v", err)
	}
	sort.Strings(containers)
	if len(containers) != 2 || containers[0] != "Hardware" || containers[1] != "Software" {
		t.Errorf("root containers = %v", containers)
	}
	if len(leaves) != 0 {
		t.Errorf("root leaves = %v, want none", leaves)
	}

	containers, leaves, err = s.ListChildren(s.Root().Child("Software"))
	if err != nil {
		t.Fatalf("ListChildren(Software) failed: %v", err)
	}
	if len(containers) != 1 || containers[0] != "Classes" {
		t.Errorf("Software containers = %v", containers)
	}
	if len(leaves) != 1 || leaves[0].Name != "Ver" || leaves[0].Size != 3 {
		t.Errorf("Software leaves = %v", leaves)
	}
}

func TestStore_ListChildren_Missing(t *testing.T) {
	s := New()
	if _, _, err := s.ListChildren(s.Root().Child("Nope")); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_ReadValueBytes(t *testing.T) {
	s := New()
	payload := []byte{0x01, 0x00, 0x00, 0x00}
	s.PutValue(payload, "Software", "Ver")

	ref := s.Root().Child("Software").Leaf("Ver")
	got, err := s.ReadValueBytes(ref)
	if err != nil {
		t.Fatalf("ReadValueBytes failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = % x, want % x", got, payload)
	}

	// The returned slice is a copy; mutating it must not reach the
	// store.
	got[0] = 0xFF
	again, _ := s.ReadValueBytes(ref)
	if again[0] != 0x01 {
		t.Error("ReadValueBytes returned shared backing memory")
	}
}

func TestStore_ReadValueBytes_Missing(t *testing.T) {
	s := New()
	s.PutContainer("Software")

	if _, err := s.ReadValueBytes(s.Root().Child("Software").Leaf("Nope")); !errors.Is(err, types.ErrValueNotFound) {
		t.Errorf("missing value err = %v, want ErrValueNotFound", err)
	}
	if _, err := s.ReadValueBytes(store.LeafRef{Path: []string{"Nope"}, Name: "x"}); !errors.Is(err, types.ErrValueNotFound) {
		t.Errorf("missing parent err = %v, want ErrValueNotFound", err)
	}
}

func TestStore_DeleteValue(t *testing.T) {
	s := New()
	s.PutValue([]byte("x"), "Software", "Ver")
	s.DeleteValue("Software", "Ver")

	if _, err := s.ReadValueBytes(s.Root().Child("Software").Leaf("Ver")); !errors.Is(err, types.ErrValueNotFound) {
		t.Errorf("deleted value err = %v, want ErrValueNotFound", err)
	}
}
