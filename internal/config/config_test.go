package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hivefs/hivefs/internal/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Backend != "demo" {
		t.Errorf("default backend = %q, want demo", cfg.Store.Backend)
	}
	if cfg.Enum.EntryOverheadBytes != session.DefaultEntryOverhead {
		t.Errorf("default overhead = %d", cfg.Enum.EntryOverheadBytes)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
mount:
  point: /mnt/hive
  allow_other: true
store:
  backend: bolt
  path: /var/lib/hivefs/hive.db
enum:
  entry_overhead_bytes: 64
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mount.Point != "/mnt/hive" || !cfg.Mount.AllowOther {
		t.Errorf("mount = %+v", cfg.Mount)
	}
	if cfg.Store.Backend != "bolt" || cfg.Store.Path != "/var/lib/hivefs/hive.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Enum.EntryOverheadBytes != 64 {
		t.Errorf("overhead = %d, want 64", cfg.Enum.EntryOverheadBytes)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Logging.Format != "text" {
		t.Errorf("format = %q, want default text", cfg.Logging.Format)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil || cfg.Store.Backend != "demo" {
		t.Errorf("empty path should yield defaults, got (%+v, %v)", cfg, err)
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || cfg == nil {
		t.Errorf("missing file should yield defaults, got (%+v, %v)", cfg, err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("mount: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config must fail")
	}
}

func TestEnumConfig_Cost(t *testing.T) {
	cfg := EnumConfig{EntryOverheadBytes: 10}
	cost := cfg.Cost()
	// "ab" is two UTF-16 code units: 10 + 2*2.
	if got := cost("ab"); got != 14 {
		t.Errorf("cost(ab) = %d, want 14", got)
	}

	// Zero falls back to the default overhead.
	var zero EnumConfig
	if got := zero.Cost()(""); got != session.DefaultEntryOverhead {
		t.Errorf("zero-config cost = %d, want %d", got, session.DefaultEntryOverhead)
	}
}

func TestEnumConfig_Codec(t *testing.T) {
	cfg := EnumConfig{IllegalChars: "#"}
	c := cfg.Codec()
	if _, ok := c.Encode("no#pe"); ok {
		t.Error("configured illegal char not applied")
	}
	if _, ok := c.Encode("fine"); !ok {
		t.Error("legal name filtered")
	}
}
