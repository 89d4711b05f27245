// Package session holds the per-enumeration state the callback
// protocol requires: the virtualization layer identifies a directory
// enumeration only by an opaque id across independent calls, so the
// provider keeps a process-wide table from id to cursor state.
//
// Calls for the same id are serialized by the caller per protocol
// convention; the table still locks each session so a misbehaving or
// genuinely concurrent caller cannot corrupt cursor state. Calls for
// different ids share nothing but the sharded map and run in
// parallel.
package session

import (
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hivefs/hivefs/internal/metrics"
	"github.com/hivefs/hivefs/internal/store"
	"github.com/hivefs/hivefs/pkg/types"
)

const shardCount = 16

// CostFunc prices one entry against the caller-supplied byte budget.
// The formula is a protocol constant owned by the virtualization
// layer's contract, so the table takes it as configuration.
type CostFunc func(name string) uint64

// Table is the process-wide enumeration session table.
type Table struct {
	cost   CostFunc
	shards [shardCount]shard
}

type shard struct {
	mu       sync.Mutex
	sessions map[types.SessionID]*session
}

// session is the mutable state of one enumeration. The entries
// snapshot is fixed for the session's lifetime; only the cursor
// moves, forward within a pass and back to zero on restart.
type session struct {
	mu        sync.Mutex
	container store.ContainerRef
	entries   []types.Entry
	filter    string
	cursor    int
	emitted   bool // an entry has been emitted since creation or last restart
}

// NewTable returns an empty table using the given cost function.
func NewTable(cost CostFunc) *Table {
	t := &Table{cost: cost}
	for i := range t.shards {
		t.shards[i].sessions = make(map[types.SessionID]*session)
	}
	return t
}

// Start creates the session for id over the given entries snapshot.
// If a session with this id already exists it is replaced with the
// fresh snapshot: the external retry contract allows the caller to
// legitimately re-start an interrupted enumeration.
func (t *Table) Start(id types.SessionID, container store.ContainerRef, entries []types.Entry, filter string) {
	sh := t.shard(id)
	sh.mu.Lock()
	_, existed := sh.sessions[id]
	sh.sessions[id] = &session{
		container: container,
		entries:   entries,
		filter:    filter,
	}
	sh.mu.Unlock()

	if !existed {
		metrics.LiveSessions.Inc()
	}
}

// NextBatch returns the next run of entries that fits within maxBytes
// and advances the cursor past everything it consumed, including
// entries the filter skipped. end reports that the cursor has reached
// the end of the snapshot; an exhausted session keeps answering
// (nil, true, nil) until it is ended.
//
// restart rewinds the cursor to the start of the snapshot before
// consuming, mirroring the protocol's rescan flag.
func (t *Table) NextBatch(id types.SessionID, maxBytes uint64, restart bool) (batch []types.Entry, end bool, err error) {
	s := t.lookup(id)
	if s == nil {
		return nil, false, &types.SessionError{ID: id, Op: "next_batch", Err: types.ErrUnknownSession}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if restart {
		s.cursor = 0
		s.emitted = false
	}

	var used uint64
	for s.cursor < len(s.entries) {
		e := s.entries[s.cursor]
		if !matchFilter(s.filter, e.Name) {
			s.cursor++
			continue
		}
		c := t.cost(e.Name)
		if used+c > maxBytes {
			if len(batch) == 0 && !s.emitted {
				// The very first entry of a fresh pass does not fit.
				// This must be surfaced: the caller cannot otherwise
				// distinguish a too-small buffer from an empty
				// directory.
				return nil, false, &types.SessionError{ID: id, Op: "next_batch", Err: types.ErrEmptyOnFirstCall}
			}
			break
		}
		batch = append(batch, e)
		used += c
		s.cursor++
		s.emitted = true
	}

	return batch, s.cursor == len(s.entries), nil
}

// End removes the session for id. It is idempotent; ending an
// unknown session is not an error.
func (t *Table) End(id types.SessionID) {
	sh := t.shard(id)
	sh.mu.Lock()
	_, existed := sh.sessions[id]
	delete(sh.sessions, id)
	sh.mu.Unlock()

	if existed {
		metrics.LiveSessions.Dec()
	}
}

// Info describes one live session for diagnostics.
type Info struct {
	ID        types.SessionID `json:"id"`
	Container string          `json:"container"`
	Remaining int             `json:"remaining"`
}

// Describe snapshots the live sessions, ordered by id.
func (t *Table) Describe() []Info {
	var infos []Info
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		for id, s := range sh.sessions {
			s.mu.Lock()
			infos = append(infos, Info{
				ID:        id,
				Container: strings.Join(s.container.Path, "/"),
				Remaining: len(s.entries) - s.cursor,
			})
			s.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		sh := &t.shards[i]
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

func (t *Table) lookup(id types.SessionID) *session {
	sh := t.shard(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.sessions[id]
}

func (t *Table) shard(id types.SessionID) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &t.shards[h.Sum32()%shardCount]
}

// matchFilter applies the session's optional filename pattern,
// case-insensitively. An unparsable pattern degrades to a literal
// name comparison.
func matchFilter(filter, name string) bool {
	if filter == "" {
		return true
	}
	ok, err := doublestar.Match(strings.ToLower(filter), strings.ToLower(name))
	if err != nil {
		return strings.EqualFold(filter, name)
	}
	return ok
}
