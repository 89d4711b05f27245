// Package config provides configuration management for the hivefs
// daemon.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hivefs/hivefs/internal/codec"
	"github.com/hivefs/hivefs/internal/session"
)

// Config represents the complete daemon configuration.
type Config struct {
	Mount   MountConfig   `yaml:"mount"`
	Store   StoreConfig   `yaml:"store"`
	Enum    EnumConfig    `yaml:"enum"`
	Debug   DebugConfig   `yaml:"debug"`
	Logging LoggingConfig `yaml:"logging"`
}

// MountConfig holds FUSE mount configuration.
type MountConfig struct {
	Point      string `yaml:"point"`
	FsName     string `yaml:"fs_name"`
	AllowOther bool   `yaml:"allow_other"`
}

// StoreConfig selects and locates the store backend.
type StoreConfig struct {
	// Backend is one of "demo", "bolt", "yaml".
	Backend string `yaml:"backend"`
	// Path is the backing file for the bolt and yaml backends.
	Path string `yaml:"path"`
}

// EnumConfig carries the enumeration protocol constants. The
// virtualization layer's contract owns both the buffer accounting
// formula and the illegal character set; they are configuration, not
// policy this daemon invents.
type EnumConfig struct {
	EntryOverheadBytes uint64 `yaml:"entry_overhead_bytes"`
	IllegalChars       string `yaml:"illegal_chars"`
}

// DebugConfig holds the metrics/debug listener configuration.
type DebugConfig struct {
	Addr string `yaml:"addr"` // empty disables the listener
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mount: MountConfig{
			Point:  "/tmp/hivefs/mnt",
			FsName: "hivefs",
		},
		Store: StoreConfig{
			Backend: "demo",
		},
		Enum: EnumConfig{
			EntryOverheadBytes: session.DefaultEntryOverhead,
			IllegalChars:       codec.DefaultIllegal,
		},
		Debug: DebugConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// LoadOrDefault loads configuration from a file, or returns defaults
// if no path is given or the file doesn't exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Codec builds the name codec from the configured character set.
func (c *EnumConfig) Codec() *codec.Codec {
	return codec.New(c.IllegalChars)
}

// Cost builds the buffer accounting function.
func (c *EnumConfig) Cost() session.CostFunc {
	overhead := c.EntryOverheadBytes
	if overhead == 0 {
		overhead = session.DefaultEntryOverhead
	}
	return session.CostWithOverhead(overhead)
}
