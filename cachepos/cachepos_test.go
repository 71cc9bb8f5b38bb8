package cachepos

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestStoreThenLookup(t *testing.T) {
	c := New(zap.NewNop(), "")
	e := Entry{OffsetBytes: 4096, TotalLenBits: 8192, ContentLenBits: 8000, PacketIndex: 3}
	c.Store("trace-a", e)

	got, ok := c.Lookup("trace-a", 4096)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != e {
		t.Fatalf("got %+v, want %+v", got, e)
	}

	if _, ok := c.Lookup("trace-b", 4096); ok {
		t.Fatal("expected a different trace ID to miss despite the same offset")
	}
	if _, ok := c.Lookup("trace-a", 8192); ok {
		t.Fatal("expected a different offset to miss")
	}
}

func TestFlushThenReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoints")

	c := New(zap.NewNop(), path)
	c.Store("trace-a", Entry{OffsetBytes: 0, TotalLenBits: 512, ContentLenBits: 500, PacketIndex: 0})
	c.Store("trace-a", Entry{OffsetBytes: 64, TotalLenBits: 512, ContentLenBits: 500, PacketIndex: 1})
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected a cache file at %s: %v", path, err)
	}

	c2 := New(zap.NewNop(), path)
	got, ok := c2.Lookup("trace-a", 64)
	if !ok {
		t.Fatal("expected the reloaded cache to have the flushed entry")
	}
	if got.PacketIndex != 1 {
		t.Fatalf("PacketIndex = %d, want 1", got.PacketIndex)
	}
}

func TestFlushWithNoPathIsNoop(t *testing.T) {
	c := New(zap.NewNop(), "")
	c.Store("trace-a", Entry{OffsetBytes: 0})
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
