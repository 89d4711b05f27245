// Package main provides the entry point for the hivefs mount daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hivefs/hivefs/internal/config"
	"github.com/hivefs/hivefs/internal/debugserver"
	"github.com/hivefs/hivefs/internal/fusefs"
	"github.com/hivefs/hivefs/internal/logging"
	"github.com/hivefs/hivefs/internal/provider"
	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/internal/store/boltstore"
	"github.com/hivefs/hivefs/internal/store/memory"
	"github.com/hivefs/hivefs/internal/store/yamlfile"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	mountPoint := flag.String("mount", "", "Mount point (overrides config)")
	backend := flag.String("store", "", "Store backend: demo, bolt, yaml (overrides config)")
	storePath := flag.String("store-path", "", "Backing file for the bolt/yaml backends (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *mountPoint != "" {
		cfg.Mount.Point = *mountPoint
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if err := logging.Init(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	st, closeStore, err := openStore(&cfg.Store)
	if err != nil {
		logging.Fatal("failed to open store", zap.Error(err))
	}
	if closeStore != nil {
		defer closeStore()
	}
	logging.Info("store opened", zap.String("backend", cfg.Store.Backend), zap.String("path", cfg.Store.Path))

	prov := provider.New(provider.Config{
		Store:  st,
		Codec:  cfg.Enum.Codec(),
		Cost:   cfg.Enum.Cost(),
		Logger: logging.L(),
	})

	if err := os.MkdirAll(cfg.Mount.Point, 0o755); err != nil {
		logging.Fatal("failed to create mount point", zap.Error(err))
	}

	hfs, err := fusefs.New(&fusefs.Config{
		MountPoint: cfg.Mount.Point,
		Provider:   prov,
		FsName:     cfg.Mount.FsName,
		AllowOther: cfg.Mount.AllowOther,
	})
	if err != nil {
		logging.Fatal("failed to create filesystem", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Debug.Addr != "" {
		dbg := debugserver.New(cfg.Debug.Addr, prov)
		go func() {
			logging.Info("debug listener started", zap.String("addr", cfg.Debug.Addr))
			if err := dbg.ListenAndServe(); err != nil {
				logging.Error("debug listener failed", zap.Error(err))
			}
		}()
		defer dbg.Shutdown(context.Background())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	logging.Info("mounting projection", zap.String("mount_point", cfg.Mount.Point))
	if err := hfs.Mount(ctx); err != nil && err != context.Canceled {
		logging.Fatal("mount failed", zap.Error(err))
	}
}

// openStore builds the configured store backend. The close function
// is nil for in-memory backends.
func openStore(cfg *config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Backend {
	case "", "demo":
		return demoStore(), nil, nil
	case "bolt":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("bolt backend requires store.path")
		}
		s, err := boltstore.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "yaml":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("yaml backend requires store.path")
		}
		s, err := yamlfile.Load(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// demoStore is a tiny built-in hive, handy for trying the mount
// without a backing file.
func demoStore() store.Store {
	s := memory.New()
	s.PutValue([]byte("Hello, projected hive!\n"), "Hello.txt")
	s.PutValue([]byte{0x01, 0x00, 0x00, 0x00}, "Software", "Ver")
	s.PutValue([]byte("hivefs\x00"), "Software", "Vendor")
	s.PutContainer("Software", "Classes")
	return s
}
