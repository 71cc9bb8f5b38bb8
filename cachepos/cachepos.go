// Package cachepos caches known packet boundaries so a seek-heavy
// consumer of the vm package — "dump every hundredth packet", "jump to
// the packet containing this timestamp" — doesn't have to decode every
// packet between offset zero and its target just to learn where each one
// starts. It never caches a *vm.Position itself (Position's instruction
// stack is only meaningful together with the PktProc that produced it,
// and re-deriving it from a byte offset via Vm.SeekPacket is already
// cheap); it caches just the scalars a packet preamble reveals about
// itself and its neighbour.
//
// Entries are persisted, snappy-compressed, and looked up by an xxhash of
// the owning trace's identity plus the queried offset — cheap enough to
// compute on every lookup.
package cachepos

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
	"go.uber.org/zap"

	"github.com/kienanstewart/yactfr/mysync"
)

// Entry is what the cache remembers about one packet boundary.
type Entry struct {
	OffsetBytes    uint64
	TotalLenBits   uint64
	ContentLenBits uint64
	PacketIndex    uint64
}

// state is everything Lookup/Store/Flush need under one lock.
type state struct {
	byKey map[uint64]Entry
	dirty bool
}

// Cache maps (traceID, offsetBytes) to the Entry a prior decode observed
// there. traceID is caller-defined — typically a file path — and is only
// ever hashed, never stored or compared directly, so distinct traces
// sharing a cache file never collide on offset alone.
type Cache struct {
	log   *zap.Logger
	path  string
	guard *mysync.Mutex[*state]
}

// New creates a Cache backed by path, loading any existing entries from
// it. An empty path means an in-memory-only cache: Flush becomes a no-op.
func New(log *zap.Logger, path string) *Cache {
	c := &Cache{log: log, path: path, guard: mysync.NewMutex(&state{byKey: make(map[uint64]Entry)})}
	c.load()
	return c
}

func cacheKey(traceID string, offsetBytes uint64) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(traceID)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], offsetBytes)
	_, _ = h.Write(b[:])
	return h.Sum64()
}

// Lookup returns the cached Entry for (traceID, offsetBytes), if any.
func (c *Cache) Lookup(traceID string, offsetBytes uint64) (Entry, bool) {
	st, unlock := c.guard.RLock()
	defer unlock.RUnlock()
	e, ok := st.byKey[cacheKey(traceID, offsetBytes)]
	if ok {
		c.log.Debug("checkpoint cache hit", zap.String("trace", traceID), zap.Uint64("offset", offsetBytes))
	}
	return e, ok
}

// Store remembers e, keyed by (traceID, e.OffsetBytes).
func (c *Cache) Store(traceID string, e Entry) {
	st, unlock := c.guard.Lock()
	defer unlock.Unlock()
	st.byKey[cacheKey(traceID, e.OffsetBytes)] = e
	st.dirty = true
}

func (c *Cache) load() {
	if c.path == "" {
		return
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		c.log.Warn("discarding corrupt checkpoint cache", zap.String("path", c.path), zap.Error(err))
		return
	}
	var entries map[uint64]Entry
	if err := gob.NewDecoder(bytes.NewReader(decoded)).Decode(&entries); err != nil {
		c.log.Warn("discarding unreadable checkpoint cache", zap.String("path", c.path), zap.Error(err))
		return
	}
	st, unlock := c.guard.Lock()
	defer unlock.Unlock()
	st.byKey = entries
}

// Flush persists the cache to its backing path, if any and if it has
// unsaved entries.
func (c *Cache) Flush() error {
	st, unlock := c.guard.Lock()
	defer unlock.Unlock()
	if c.path == "" || !st.dirty {
		return nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st.byKey); err != nil {
		return err
	}
	if err := os.WriteFile(c.path, snappy.Encode(nil, buf.Bytes()), 0o644); err != nil {
		return err
	}
	st.dirty = false
	return nil
}
