// Package integration exercises the full callback protocol against a
// populated store, the way the virtualization layer drives it: walk
// the tree by enumeration, resolve placeholders for everything found,
// then read every file back and compare payloads.
package integration

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/hivefs/hivefs/internal/provider"
	"github.com/hivefs/hivefs/internal/store/memory"
	"github.com/hivefs/hivefs/internal/store/yamlfile"
	"github.com/hivefs/hivefs/pkg/types"
)

func buildStore() *memory.Store {
	s := memory.New()
	s.PutValue([]byte{0x01, 0x00, 0x00, 0x00}, "Software", "Ver")
	s.PutValue([]byte("hivefs\x00"), "Software", "Vendor")
	s.PutValue([]byte("deep"), "Software", "Classes", "Sub", "Val")
	s.PutContainer("Hardware")
	s.PutValue([]byte("hidden"), "ill*gal")
	s.PutValue([]byte("quirk"), "Trailing.")
	return s
}

// walkAll drains one enumeration session per container, recursively,
// using a small buffer so continuation calls are exercised.
func walkAll(t *testing.T, p *provider.Provider, path string, out map[string]types.PlaceholderInfo) {
	t.Helper()

	id := types.SessionID("e2e-" + path)
	if status := p.StartDirectoryEnumeration(id, path, ""); !status.OK() {
		t.Fatalf("start enumeration of %q: %s", path, status)
	}
	defer p.EndDirectoryEnumeration(id)

	for {
		batch, end, status := p.GetDirectoryEnumeration(id, 256, false)
		if !status.OK() {
			t.Fatalf("continue enumeration of %q: %s", path, status)
		}
		for _, info := range batch {
			full := info.Name
			if path != "" {
				full = path + "/" + info.Name
			}
			if _, dup := out[full]; dup {
				t.Fatalf("entry %q emitted twice in one pass", full)
			}
			out[full] = info
			if info.IsDirectory {
				walkAll(t, p, full, out)
			}
		}
		if end {
			return
		}
	}
}

func TestFullProjectionPass(t *testing.T) {
	p := provider.New(provider.Config{Store: buildStore()})

	found := make(map[string]types.PlaceholderInfo)
	walkAll(t, p, "", found)

	wantFiles := map[string]string{
		"Software/Ver":             "\x01\x00\x00\x00",
		"Software/Vendor":          "hivefs\x00",
		"Software/Classes/Sub/Val": "deep",
		"Trailing.":                "quirk",
	}
	wantDirs := []string{"Software", "Software/Classes", "Software/Classes/Sub", "Hardware"}

	for path, payload := range wantFiles {
		info, ok := found[path]
		if !ok {
			t.Errorf("file %q missing from walk", path)
			continue
		}
		if info.IsDirectory || info.Size != uint64(len(payload)) {
			t.Errorf("file %q placeholder = %+v", path, info)
		}
	}
	for _, path := range wantDirs {
		info, ok := found[path]
		if !ok || !info.IsDirectory {
			t.Errorf("directory %q missing or wrong kind: %+v", path, info)
		}
	}

	// Names with illegal characters never appear anywhere.
	for path := range found {
		if bytes.ContainsAny([]byte(path), `*?<>|:"`) {
			t.Errorf("illegal name leaked into listing: %q", path)
		}
	}
	if _, status := p.GetPlaceholderInfo("ill*gal"); status != types.StatusNotFound {
		t.Errorf("illegal name resolved with status %s", status)
	}

	// Every discovered file placeholder agrees with a direct resolve
	// and its payload reads back exactly.
	for path, payload := range wantFiles {
		info, status := p.GetPlaceholderInfo(path)
		if !status.OK() {
			t.Errorf("GetPlaceholderInfo(%q) = %s", path, status)
			continue
		}
		if info.Size != uint64(len(payload)) {
			t.Errorf("placeholder size of %q = %d, want %d", path, info.Size, len(payload))
		}

		data, status := p.GetFileData(path, 0, info.Size)
		if !status.OK() || string(data) != payload {
			t.Errorf("GetFileData(%q) = (%q, %s), want %q", path, data, status, payload)
		}

		// Offset reads produce the matching slice.
		if info.Size > 1 {
			data, status = p.GetFileData(path, 1, info.Size)
			if !status.OK() || string(data) != payload[1:] {
				t.Errorf("offset read of %q = (%q, %s), want %q", path, data, status, payload[1:])
			}
		}
	}
}

func TestYAMLBackedProjection(t *testing.T) {
	s, err := yamlfile.Parse([]byte(`
Software:
  Ver: !!binary AQAAAA==
  Classes: {}
`))
	if err != nil {
		t.Fatalf("parse hive: %v", err)
	}
	p := provider.New(provider.Config{Store: s})

	data, status := p.GetFileData("Software/Ver", 0, 4)
	if !status.OK() || !bytes.Equal(data, []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Fatalf("GetFileData = (% x, %s)", data, status)
	}
}

func TestManyConcurrentEnumerations(t *testing.T) {
	p := provider.New(provider.Config{Store: buildStore()})

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(i int) {
			id := types.SessionID(fmt.Sprintf("conc-%d", i))
			if status := p.StartDirectoryEnumeration(id, "Software", ""); !status.OK() {
				done <- fmt.Errorf("start: %s", status)
				return
			}
			total := 0
			for {
				batch, end, status := p.GetDirectoryEnumeration(id, 256, false)
				if !status.OK() {
					done <- fmt.Errorf("get: %s", status)
					return
				}
				total += len(batch)
				if end {
					break
				}
			}
			p.EndDirectoryEnumeration(id)
			if total != 3 {
				done <- fmt.Errorf("drained %d entries, want 3", total)
				return
			}
			done <- nil
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Error(err)
		}
	}
	if n := p.LiveSessions(); n != 0 {
		t.Errorf("LiveSessions = %d after all enumerations ended, want 0", n)
	}
}
