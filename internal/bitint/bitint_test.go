package bitint

import "testing"

func TestReadUintByteAligned(t *testing.T) {
	buf := []byte{0x01, 0x02}
	if got := ReadUint(buf, 0, 16, true); got != 0x0102 {
		t.Fatalf("big-endian: got %#x, want 0x0102", got)
	}
	if got := ReadUint(buf, 0, 16, false); got != 0x0201 {
		t.Fatalf("little-endian: got %#x, want 0x0201", got)
	}
}

func TestReadUintBitByBit(t *testing.T) {
	// 0b1011_0000 starting at bit 1, 4 bits wide -> 0b0110 == 6.
	buf := []byte{0b1011_0000}
	if got := ReadUint(buf, 1, 4, true); got != 6 {
		t.Fatalf("got %d, want 6", got)
	}
}

func TestReadUintStraddlingByte(t *testing.T) {
	// bits 4..12 of {0xF1, 0x23} (MSB-first) == 0b0001_0010 == 0x12.
	buf := []byte{0xF1, 0x23}
	if got := ReadUint(buf, 4, 8, true); got != 0x12 {
		t.Fatalf("got %#x, want 0x12", got)
	}
}

func TestReadIntSignExtension(t *testing.T) {
	// 6-bit field 0b111110 == -2 once sign-extended.
	buf := []byte{0b1111_1000}
	if got := ReadInt(buf, 0, 6, true); got != -2 {
		t.Fatalf("got %d, want -2", got)
	}
	// Same bits reinterpreted as an 6-bit unsigned value is 62, not -2.
	if got := ReadUint(buf, 0, 6, true); got != 62 {
		t.Fatalf("got %d, want 62", got)
	}
}

func TestReadFloat64RoundTrip(t *testing.T) {
	// float64(1.5) == 0x3FF8000000000000.
	buf := []byte{0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if got := ReadFloat64(buf, 0, true); got != 1.5 {
		t.Fatalf("got %v, want 1.5", got)
	}
}

// referenceReadUint is a slow, obviously-correct reference implementation
// of ReadUint: walk the buffer one bit at a time, MSB-first within each
// byte, and fold the bits together in forward order for big endian or
// reverse byte-chunk order for little endian. It's built the same way
// readUintBitByBit is, just without the fixed-size-array optimization, so
// a boundary-matrix test comparing the two catches any divergence in the
// fast path without hand-deriving hundreds of expected values.
func referenceReadUint(buf []byte, startBit, lenBits uint, bigEndian bool) uint64 {
	startByte := startBit / 8
	endBit := startBit + lenBits
	lastByte := (endBit - 1) / 8

	var chunks [][2]uint64 // {value, width}
	for b := startByte; b <= lastByte; b++ {
		lo, hi := b*8, b*8+8
		if lo < startBit {
			lo = startBit
		}
		if hi > endBit {
			hi = endBit
		}
		var v uint64
		for pos := lo; pos < hi; pos++ {
			bit := (buf[b] >> (7 - pos%8)) & 1
			v = v<<1 | uint64(bit)
		}
		chunks = append(chunks, [2]uint64{v, uint64(hi - lo)})
	}

	var result uint64
	if bigEndian {
		for _, c := range chunks {
			result = result<<c[1] | c[0]
		}
	} else {
		for i := len(chunks) - 1; i >= 0; i-- {
			result = result<<chunks[i][1] | chunks[i][0]
		}
	}
	return result
}

// TestReadUintBoundaryMatrix exercises every bit-in-byte starting offset
// (0..7), every length (1..64), and both byte orders against a buffer
// wide enough to hold the longest of them, comparing ReadUint to the
// independently-written referenceReadUint above. This is the matrix that
// would have caught the little-endian straddling-read bug (byte order
// being ignored by the unaligned path): TestReadUintStraddlingByte above
// only ever exercised bigEndian=true.
func TestReadUintBoundaryMatrix(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = byte(0x13 * (i + 1))
	}
	for startBit := uint(0); startBit < 8; startBit++ {
		for lenBits := uint(1); lenBits <= 64; lenBits++ {
			for _, be := range []bool{true, false} {
				got := ReadUint(buf, startBit, lenBits, be)
				want := referenceReadUint(buf, startBit, lenBits, be)
				if got != want {
					t.Fatalf("ReadUint(startBit=%d, lenBits=%d, bigEndian=%v) = %#x, want %#x", startBit, lenBits, be, got, want)
				}
			}
		}
	}
}

// TestReadUintAlternatingByteOrderAcrossBoundary checks that two
// consecutive straddling reads, one little-endian and one big-endian, each
// independently produce the value their own byte order dictates — the
// straddling kernel must not carry any state between calls, and must not
// let one read's byte order bleed into the chunk-ordering of an adjacent
// read over the same bytes.
func TestReadUintAlternatingByteOrderAcrossBoundary(t *testing.T) {
	buf := []byte{0xF1, 0x23, 0x45}
	be := ReadUint(buf, 4, 8, true)
	le := ReadUint(buf, 4, 8, false)
	if be == le {
		t.Fatalf("expected differing big/little-endian straddling reads over the same bits, got %#x for both", be)
	}
	if got := referenceReadUint(buf, 4, 8, true); got != be {
		t.Fatalf("big-endian: got %#x, want %#x", be, got)
	}
	if got := referenceReadUint(buf, 4, 8, false); got != le {
		t.Fatalf("little-endian: got %#x, want %#x", le, got)
	}
}

func TestStraddlesByte(t *testing.T) {
	cases := []struct {
		startBit, lenBits uint
		want              bool
	}{
		{0, 8, false},   // byte-aligned, whole bytes
		{0, 16, false},  // byte-aligned, whole bytes
		{4, 4, false},   // confined to one byte, just not byte-aligned
		{4, 8, true},    // starts mid-byte, spans into the next
		{0, 4, false},   // aligned start, sub-byte length
	}
	for _, c := range cases {
		if got := StraddlesByte(c.startBit, c.lenBits); got != c.want {
			t.Errorf("StraddlesByte(%d, %d) = %v, want %v", c.startBit, c.lenBits, got, c.want)
		}
	}
}
