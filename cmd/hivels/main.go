// Package main provides hivels, a debugging tool that walks a hive
// through the projection callbacks and prints the tree - the same
// code path a mounted filesystem exercises, without needing FUSE.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/hivefs/hivefs/internal/codec"
	"github.com/hivefs/hivefs/internal/provider"
	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/internal/store/boltstore"
	"github.com/hivefs/hivefs/internal/store/yamlfile"
	"github.com/hivefs/hivefs/pkg/types"
)

func main() {
	backend := flag.String("store", "yaml", "Store backend: bolt, yaml")
	storePath := flag.String("store-path", "", "Backing file for the store")
	start := flag.String("path", "", "Virtual path to start listing from")
	flag.Parse()

	if *storePath == "" {
		fmt.Fprintln(os.Stderr, "usage: hivels -store yaml|bolt -store-path <file> [-path <virtual path>]")
		os.Exit(1)
	}

	var (
		st  store.Store
		err error
	)
	switch *backend {
	case "bolt":
		var bs *boltstore.Store
		bs, err = boltstore.Open(*storePath)
		if err == nil {
			defer bs.Close()
			st = bs
		}
	case "yaml":
		st, err = yamlfile.Load(*storePath)
	default:
		err = fmt.Errorf("unknown store backend %q", *backend)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}

	prov := provider.New(provider.Config{Store: st, Codec: codec.New("")})
	if err := walk(prov, *start, 0); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

var nextID uint64

// walk enumerates path through the callback protocol and recurses
// into sub-containers.
func walk(prov *provider.Provider, path string, depth int) error {
	nextID++
	id := types.SessionID("hivels-" + strconv.FormatUint(nextID, 10))

	if status := prov.StartDirectoryEnumeration(id, path, ""); !status.OK() {
		return fmt.Errorf("list %q: %s", path, status)
	}
	defer prov.EndDirectoryEnumeration(id)

	for {
		batch, end, status := prov.GetDirectoryEnumeration(id, 64*1024, false)
		if !status.OK() {
			return fmt.Errorf("enumerate %q: %s", path, status)
		}
		for _, info := range batch {
			for i := 0; i < depth; i++ {
				fmt.Print("  ")
			}
			if info.IsDirectory {
				fmt.Printf("%s/\n", info.Name)
				child := info.Name
				if path != "" {
					child = path + "/" + info.Name
				}
				if err := walk(prov, child, depth+1); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s  (%d bytes)\n", info.Name, info.Size)
			}
		}
		if end {
			return nil
		}
	}
}
