package datasource

import (
	"bytes"
	"testing"
)

func TestByteSliceData(t *testing.T) {
	s := &ByteSlice{Buf: []byte{1, 2, 3, 4, 5}}

	got, ok := s.Data(1, 3)
	if !ok || !bytes.Equal(got, []byte{2, 3, 4}) {
		t.Fatalf("Data(1, 3) = %v, %v", got, ok)
	}

	got, ok = s.Data(3, 9)
	if !ok || !bytes.Equal(got, []byte{4, 5}) {
		t.Fatalf("Data(3, 9) = %v, %v, want a short read clamped to the buffer end", got, ok)
	}

	if _, ok := s.Data(5, 1); ok {
		t.Fatal("Data at the buffer end should report false")
	}
}

type readerAtFunc func(p []byte, off int64) (int, error)

func (f readerAtFunc) ReadAt(p []byte, off int64) (int, error) { return f(p, off) }

func TestReaderAtData(t *testing.T) {
	backing := []byte{10, 20, 30, 40, 50}
	r := readerAtFunc(func(p []byte, off int64) (int, error) {
		n := copy(p, backing[off:])
		return n, nil
	})
	s := &ReaderAt{R: r, Size: int64(len(backing))}

	got, ok := s.Data(1, 3)
	if !ok || !bytes.Equal(got, []byte{20, 30, 40}) {
		t.Fatalf("Data(1, 3) = %v, %v", got, ok)
	}

	got, ok = s.Data(4, 9)
	if !ok || !bytes.Equal(got, []byte{50}) {
		t.Fatalf("Data(4, 9) = %v, %v, want a single-byte short read at the end", got, ok)
	}

	if _, ok := s.Data(5, 1); ok {
		t.Fatal("Data at the reader's end should report false")
	}
}
