// Package datasource defines the byte-providing collaborator a [*vm.Vm]
// pulls from, and a couple of concrete implementations good enough to
// exercise and test the VM. The VM never owns the bytes it reads: it asks
// a Source for a window starting at some byte offset and copies nothing it
// doesn't have to, the same way trace.Parse reads directly out of its
// bufio.Reader.
package datasource

import (
	"io"
)

// Source hands back a contiguous run of bytes starting at offsetBytes. The
// returned slice may be shorter than hintSizeBytes (end of stream, or the
// source's own buffering granularity); it must never be longer. A false
// second return means offsetBytes is at or past the end of the available
// data.
//
// hintSizeBytes is never more than 9: a VM read never straddles more than
// 9 bytes (a 64-bit integer misaligned by up to 7 bits still fits in 9
// bytes), so no Source needs to plan for a larger request.
type Source interface {
	Data(offsetBytes uint64, hintSizeBytes int) ([]byte, bool)
}

// ByteSlice is a Source backed by an in-memory byte slice, the simplest
// possible collaborator and the one every seed-scenario test in this
// module is built on.
type ByteSlice struct {
	Buf []byte
}

func (s *ByteSlice) Data(offsetBytes uint64, hintSizeBytes int) ([]byte, bool) {
	if offsetBytes >= uint64(len(s.Buf)) {
		return nil, false
	}
	end := offsetBytes + uint64(hintSizeBytes)
	if end > uint64(len(s.Buf)) {
		end = uint64(len(s.Buf))
	}
	return s.Buf[offsetBytes:end], true
}

// ReaderAt adapts an io.ReaderAt (e.g. an *os.File) into a Source, reading
// through a reusable scratch buffer so repeated small reads over the same
// region don't each allocate.
type ReaderAt struct {
	R     io.ReaderAt
	Size  int64
	scratch [9]byte
}

func (s *ReaderAt) Data(offsetBytes uint64, hintSizeBytes int) ([]byte, bool) {
	if int64(offsetBytes) >= s.Size {
		return nil, false
	}
	n := hintSizeBytes
	if int64(offsetBytes)+int64(n) > s.Size {
		n = int(s.Size - int64(offsetBytes))
	}
	read, err := s.R.ReadAt(s.scratch[:n], int64(offsetBytes))
	if read == 0 && err != nil && err != io.EOF {
		return nil, false
	}
	return s.scratch[:read], read > 0
}
