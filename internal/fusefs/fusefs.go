// Package fusefs adapts the projection engine to FUSE. It is the
// virtualization layer's role on Linux and macOS: every FUSE request
// becomes one or more callbacks against the provider's dispatch
// surface, and the provider's status codes come back as errnos.
//
// The tree is strictly read-only; write operations never reach the
// provider because no mutating FUSE interface is implemented.
package fusefs

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/hivefs/hivefs/internal/provider"
	"github.com/hivefs/hivefs/pkg/types"
)

// Errors for HiveFS configuration.
var (
	ErrNilProvider       = errors.New("nil provider")
	ErrInvalidMountPoint = errors.New("invalid mount point")
)

// readdirBatchBytes is the buffer budget the adapter offers per
// enumeration continuation call.
const readdirBatchBytes = 64 * 1024

// Config holds the configuration for creating a HiveFS.
type Config struct {
	MountPoint string
	Provider   *provider.Provider
	FsName     string // defaults to "hivefs"
	AllowOther bool
}

// HiveFS is a read-only FUSE filesystem over a projection provider.
type HiveFS struct {
	config  *Config
	server  *fuse.Server
	mounted atomic.Bool
	mu      sync.Mutex
}

// New creates a new HiveFS instance.
func New(config *Config) (*HiveFS, error) {
	if config.Provider == nil {
		return nil, ErrNilProvider
	}
	if config.MountPoint == "" {
		return nil, ErrInvalidMountPoint
	}
	if config.FsName == "" {
		config.FsName = "hivefs"
	}
	return &HiveFS{config: config}, nil
}

// Mount mounts the FUSE filesystem. It blocks until the context is
// cancelled, then unmounts.
func (h *HiveFS) Mount(ctx context.Context) error {
	root := &hiveDir{provider: h.config.Provider}

	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			AllowOther: h.config.AllowOther,
			FsName:     h.config.FsName,
			Name:       h.config.FsName,
		},
	}

	server, err := fs.Mount(h.config.MountPoint, root, opts)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.server = server
	h.mounted.Store(true)
	h.mu.Unlock()

	<-ctx.Done()

	if err := server.Unmount(); err != nil {
		return err
	}
	h.mounted.Store(false)
	return ctx.Err()
}

// IsMounted returns true if the filesystem is currently mounted.
func (h *HiveFS) IsMounted() bool {
	return h.mounted.Load()
}

// sessionCounter feeds the opaque enumeration ids this adapter hands
// to the provider.
var sessionCounter atomic.Uint64

func nextSessionID() types.SessionID {
	return types.SessionID("fuse-" + strconv.FormatUint(sessionCounter.Add(1), 10))
}

// hiveDir is a container node. The root has an empty path.
type hiveDir struct {
	fs.Inode
	provider *provider.Provider
	path     string
}

var _ = (fs.NodeLookuper)((*hiveDir)(nil))
var _ = (fs.NodeReaddirer)((*hiveDir)(nil))
var _ = (fs.NodeGetattrer)((*hiveDir)(nil))

func (d *hiveDir) childPath(name string) string {
	if d.path == "" {
		return name
	}
	return d.path + "/" + name
}

// Getattr implements fs.NodeGetattrer.
func (d *hiveDir) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFDIR | 0o555
	return fs.OK
}

// Lookup implements fs.NodeLookuper.
func (d *hiveDir) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	path := d.childPath(name)
	info, status := d.provider.GetPlaceholderInfo(path)
	if !status.OK() {
		return nil, statusErrno(status)
	}

	if info.IsDirectory {
		out.Attr.Mode = fuse.S_IFDIR | 0o555
		child := &hiveDir{provider: d.provider, path: path}
		return d.NewInode(ctx, child, fs.StableAttr{Mode: fuse.S_IFDIR}), fs.OK
	}

	out.Attr.Mode = fuse.S_IFREG | 0o444
	out.Attr.Size = info.Size
	child := &hiveFile{provider: d.provider, path: path, size: info.Size}
	return d.NewInode(ctx, child, fs.StableAttr{Mode: fuse.S_IFREG}), fs.OK
}

// Readdir implements fs.NodeReaddirer. One FUSE readdir is a full
// enumeration session: start, drain in buffer-bounded batches, end.
func (d *hiveDir) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	id := nextSessionID()
	if status := d.provider.StartDirectoryEnumeration(id, d.path, ""); !status.OK() {
		return nil, statusErrno(status)
	}
	defer d.provider.EndDirectoryEnumeration(id)

	var result []fuse.DirEntry
	for {
		batch, end, status := d.provider.GetDirectoryEnumeration(id, readdirBatchBytes, false)
		if !status.OK() {
			return nil, statusErrno(status)
		}
		for _, info := range batch {
			mode := uint32(fuse.S_IFREG)
			if info.IsDirectory {
				mode = fuse.S_IFDIR
			}
			result = append(result, fuse.DirEntry{Name: info.Name, Mode: mode})
		}
		if end {
			return fs.NewListDirStream(result), fs.OK
		}
		if len(batch) == 0 {
			// An empty batch without the end marker means the next
			// entry can never fit the budget; looping would never
			// terminate.
			return nil, syscall.EIO
		}
	}
}

// hiveFile is a leaf node.
type hiveFile struct {
	fs.Inode
	provider *provider.Provider
	path     string
	size     uint64
}

var _ = (fs.NodeGetattrer)((*hiveFile)(nil))
var _ = (fs.NodeOpener)((*hiveFile)(nil))

// Getattr implements fs.NodeGetattrer.
func (f *hiveFile) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, status := f.provider.GetPlaceholderInfo(f.path)
	if !status.OK() {
		return statusErrno(status)
	}
	out.Mode = fuse.S_IFREG | 0o444
	out.Size = info.Size
	return fs.OK
}

// Open implements fs.NodeOpener. Only read access is served.
func (f *hiveFile) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&syscall.O_ACCMODE != syscall.O_RDONLY {
		return nil, 0, syscall.EROFS
	}
	return &hiveFileHandle{provider: f.provider, path: f.path}, fuse.FOPEN_KEEP_CACHE, fs.OK
}

// hiveFileHandle reads file data through the provider. No state is
// kept between reads; every read re-resolves the payload.
type hiveFileHandle struct {
	provider *provider.Provider
	path     string
}

var _ = (fs.FileReader)((*hiveFileHandle)(nil))

// Read implements fs.FileReader.
func (fh *hiveFileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, status := fh.provider.GetFileData(fh.path, uint64(off), uint64(len(dest)))
	if !status.OK() {
		return nil, statusErrno(status)
	}
	return fuse.ReadResultData(data), fs.OK
}

// statusErrno maps protocol status codes onto errnos.
func statusErrno(s types.Status) syscall.Errno {
	switch s {
	case types.StatusSuccess:
		return fs.OK
	case types.StatusNotFound:
		return syscall.ENOENT
	case types.StatusNotADirectory:
		return syscall.ENOTDIR
	case types.StatusInvalidParameter:
		return syscall.EINVAL
	case types.StatusInsufficientBuffer:
		return syscall.ERANGE
	default:
		return syscall.EIO
	}
}
