// Package provider implements the projection engine's callback
// surface: the single entry point the filesystem virtualization
// layer invokes to list directories, synthesize placeholders and
// serve file bytes out of the key/value store.
//
// Every callback maps its outcome onto the protocol's fixed status
// codes. Expected conditions (missing paths, exhausted sessions,
// too-small buffers) come back as their specific codes; anything
// unexpected, including a panicking store accessor, is logged and
// converted to StatusFailure at the boundary. A fault that escaped a
// callback would take the whole provider process down with it.
package provider

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hivefs/hivefs/internal/codec"
	"github.com/hivefs/hivefs/internal/metrics"
	"github.com/hivefs/hivefs/internal/resolve"
	"github.com/hivefs/hivefs/internal/session"
	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

// Config assembles a Provider.
type Config struct {
	// Store is the key/value store to project. Required.
	Store store.Store

	// Codec overrides the name codec. Nil selects the default
	// illegal-character set.
	Codec *codec.Codec

	// Cost overrides the enumeration buffer accounting. Nil selects
	// session.DefaultCost.
	Cost session.CostFunc

	// Logger receives boundary diagnostics. Nil selects a no-op
	// logger.
	Logger *zap.Logger
}

// Provider is the callback dispatcher. It is safe for arbitrary
// concurrent invocation; the only mutable state is the session table.
type Provider struct {
	store    store.Store
	resolver *resolve.Resolver
	sessions *session.Table
	log      *zap.Logger
}

// New returns a Provider over the configured store.
func New(cfg Config) *Provider {
	c := cfg.Codec
	if c == nil {
		c = codec.New("")
	}
	cost := cfg.Cost
	if cost == nil {
		cost = session.DefaultCost
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{
		store:    cfg.Store,
		resolver: resolve.New(cfg.Store, c),
		sessions: session.NewTable(cost),
		log:      log,
	}
}

// StartDirectoryEnumeration opens an enumeration session over the
// container at path. An existing session with the same id is replaced
// with a fresh snapshot.
func (p *Provider) StartDirectoryEnumeration(id types.SessionID, path string, filter string) types.Status {
	return p.dispatch("start_dir_enum", func() types.Status {
		p.log.Debug("start directory enumeration",
			zap.String("session", string(id)), zap.String("path", path))

		node, err := p.resolver.Resolve(SplitPath(path))
		if err != nil {
			return p.resolveStatus(err)
		}
		if node.Kind != types.KindContainer {
			return types.StatusNotADirectory
		}
		entries, err := p.resolver.List(node.Container)
		if err != nil {
			return p.resolveStatus(err)
		}
		p.sessions.Start(id, node.Container, entries, filter)
		return types.StatusSuccess
	})
}

// GetDirectoryEnumeration returns the next batch of placeholders for
// the session, bounded by maxBytes of the protocol's buffer
// accounting. end reports exhaustion; restart rewinds the session
// before consuming.
func (p *Provider) GetDirectoryEnumeration(id types.SessionID, maxBytes uint64, restart bool) (batch []types.PlaceholderInfo, end bool, status types.Status) {
	status = p.dispatch("get_dir_enum", func() types.Status {
		entries, done, err := p.sessions.NextBatch(id, maxBytes, restart)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrUnknownSession):
				return types.StatusInvalidParameter
			case errors.Is(err, types.ErrEmptyOnFirstCall):
				return types.StatusInsufficientBuffer
			default:
				p.log.Error("enumeration continuation failed", zap.Error(err))
				return types.StatusFailure
			}
		}
		batch = make([]types.PlaceholderInfo, len(entries))
		for i, e := range entries {
			batch[i] = PlaceholderFor(e)
		}
		end = done
		return types.StatusSuccess
	})
	return batch, end, status
}

// EndDirectoryEnumeration closes the session. Ending an unknown
// session succeeds; the protocol allows redundant end calls.
func (p *Provider) EndDirectoryEnumeration(id types.SessionID) types.Status {
	return p.dispatch("end_dir_enum", func() types.Status {
		p.sessions.End(id)
		return types.StatusSuccess
	})
}

// GetPlaceholderInfo resolves a single virtual path to its
// placeholder metadata.
func (p *Provider) GetPlaceholderInfo(path string) (info types.PlaceholderInfo, status types.Status) {
	status = p.dispatch("get_placeholder_info", func() types.Status {
		components := SplitPath(path)
		if len(components) == 0 {
			// The virtualization root is never queried through this
			// callback.
			return types.StatusInvalidParameter
		}
		p.log.Debug("get placeholder info", zap.String("path", path))

		node, err := p.resolver.Resolve(components)
		if err != nil {
			return p.resolveStatus(err)
		}
		info = PlaceholderFor(types.Entry{Name: node.Name, Kind: node.Kind, Size: node.Size})
		return types.StatusSuccess
	})
	return info, status
}

// GetFileData serves a byte range of the leaf at path. The payload is
// re-resolved on every call; a read past the end of the payload is
// benign and returns an empty slice with success.
func (p *Provider) GetFileData(path string, offset, length uint64) (data []byte, status types.Status) {
	status = p.dispatch("get_file_data", func() types.Status {
		p.log.Debug("get file data", zap.String("path", path),
			zap.Uint64("offset", offset), zap.Uint64("length", length))

		node, err := p.resolver.Resolve(SplitPath(path))
		if err != nil {
			return p.resolveStatus(err)
		}
		if node.Kind != types.KindLeaf {
			// A container has no byte payload to serve.
			return types.StatusNotFound
		}

		data, err = p.ReadFileData(node.Leaf, offset, length)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrOutOfRange):
				data = nil
				return types.StatusSuccess
			case errors.Is(err, types.ErrValueNotFound):
				// The value vanished between resolution and read: a
				// benign race with an external store mutation.
				return types.StatusNotFound
			default:
				p.log.Error("file data read failed", zap.String("path", path), zap.Error(err))
				return types.StatusFailure
			}
		}
		return types.StatusSuccess
	})
	return data, status
}

// LiveSessions reports the number of open enumeration sessions.
func (p *Provider) LiveSessions() int {
	return p.sessions.Len()
}

// Sessions describes the open enumeration sessions for diagnostics.
func (p *Provider) Sessions() []session.Info {
	return p.sessions.Describe()
}

// dispatch runs one callback body, converts panics to StatusFailure
// and records the callback metric.
func (p *Provider) dispatch(kind string, fn func() types.Status) (status types.Status) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("callback panicked", zap.String("kind", kind), zap.Any("panic", r))
			status = types.StatusFailure
		}
		metrics.Callbacks.WithLabelValues(kind, string(status)).Inc()
	}()
	return fn()
}

// resolveStatus maps resolver errors onto protocol codes.
func (p *Provider) resolveStatus(err error) types.Status {
	switch {
	case errors.Is(err, types.ErrNotAContainer):
		return types.StatusNotADirectory
	case errors.Is(err, types.ErrNotFound):
		return types.StatusNotFound
	default:
		p.log.Error("store query failed", zap.Error(err))
		return types.StatusFailure
	}
}

// SplitPath breaks a virtual path into its name components. Both
// separator conventions of the callback layer are accepted; empty
// components collapse.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}
