// Package vm implements the pull-driven decoding virtual machine: given a
// compiled [proc.PktProc] and a [datasource.Source], it walks a sequence
// of packets one [elem.Element] at a time, never buffering more than one
// packet's worth of bytes and never recursing to follow a nested
// structure, array, or variant — the instruction-pointer stack in
// [Position] stands in for the call stack a recursive-descent decoder
// would otherwise need.
//
// The VM itself is the only exported surface; there is no user-facing
// iterator/cursor wrapper here (spec.md treats that as an external
// concern), so callers drive [*Vm] directly: Advance, CurrentElement,
// SeekPacket, SavePosition and RestorePosition are the whole API.
package vm

import (
	"github.com/kienanstewart/yactfr/datasource"
	"github.com/kienanstewart/yactfr/decerr"
	"github.com/kienanstewart/yactfr/elem"
	"github.com/kienanstewart/yactfr/proc"
	"github.com/kienanstewart/yactfr/slices"
)

// Vm is a single decoding cursor over a byte sequence described by a
// PktProc. A Vm is not safe for concurrent use — spec.md's concurrency
// model gives each Vm its own position and buffer, and expects a caller
// that wants parallelism to run one Vm per goroutine, each over its own
// SeekPacket'd range.
type Vm struct {
	src     datasource.Source
	pktProc *proc.PktProc

	pos Position
	win window
}

// New creates a Vm positioned at the very beginning of the element
// sequence (byte offset 0). Call Advance to produce the first element.
func New(src datasource.Source, pktProc *proc.PktProc) *Vm {
	v := &Vm{
		src:     src,
		pktProc: pktProc,
	}
	v.resetForNewPkt(0)
	v.pos.state = stBeginPkt
	return v
}

// resetForNewPkt reinitializes everything in Position that does not
// survive a packet boundary: the instruction stack, the saved-value
// table, the expected lengths, and the selected data stream/event record
// types. The default clock accumulator and mark counter are deliberately
// left alone — the clock is monotonic across the whole element sequence,
// and mark must keep increasing for Position.Compare to stay meaningful
// across a SeekPacket.
func (v *Vm) resetForNewPkt(pktStartBits uint64) {
	v.pos.stack = v.pos.stack[:0]
	v.pos.savedVals = make([]uint64, v.pktProc.SavedValsCount)
	v.pos.pktStartBits = pktStartBits
	v.pos.headBits = 0
	v.pos.hasTotalLen = false
	v.pos.hasContentLen = false
	v.pos.hasMagicNumber = false
	v.pos.hasOriginIndex = false
	v.pos.hasDsID = false
	v.pos.hasUUID = false
	v.pos.hasCurID = false
	v.pos.curDst = nil
	v.pos.curErt = nil
	v.pos.partialByte = false
	v.win = window{}
}

func (v *Vm) globalBitOffset() uint64 {
	return v.pos.pktStartBits + v.pos.headBits
}

func (v *Vm) pushFrame(p proc.Procedure) {
	v.pos.stack = append(v.pos.stack, frame{proc: p})
}

func (v *Vm) pushArrayFrame(p proc.Procedure, nElems uint64) {
	v.pos.stack = append(v.pos.stack, frame{proc: p, isArray: true, remElems: nElems})
}

// pushTextArrayFrame pushes a placeholder frame for a text array whose n
// content bytes have not been read yet; stReadSubstr refills them a chunk
// at a time and pops this frame itself once remElems reaches zero.
func (v *Vm) pushTextArrayFrame(n uint64) {
	v.pos.stack = append(v.pos.stack, frame{isArray: true, remElems: n})
}

func (v *Vm) popFrame() frame {
	f, rest, _ := slices.Pop(v.pos.stack)
	v.pos.stack = rest
	return f
}

func (v *Vm) topFrame() *frame {
	return &v.pos.stack[len(v.pos.stack)-1]
}

// CurrentElement returns the element produced by the most recent
// successful Advance. Its contents are undefined before the first
// Advance call and after Advance returns (false, nil).
func (v *Vm) CurrentElement() *elem.Element {
	return &v.pos.elem
}

// AtEnd reports whether the iterator has reached the end of the element
// sequence. Advancing further is a documented no-op.
func (v *Vm) AtEnd() bool {
	return v.pos.atEnd
}

// Advance produces the next element. It returns (true, nil) when elem
// has been updated, (false, nil) at end of stream, and (false, err) on a
// decoding error, after which the Vm must not be advanced again without
// first calling SeekPacket or RestorePosition.
func (v *Vm) Advance() (bool, error) {
	if v.pos.atEnd {
		return false, nil
	}
	for {
		emitted, done, err := v.step()
		if err != nil {
			return false, err
		}
		if emitted {
			v.pos.mark++
			return true, nil
		}
		if done {
			v.pos.atEnd = true
			return false, nil
		}
	}
}

// SeekPacket repositions the Vm at the packet beginning at offsetBytes
// and immediately materializes it, so the very next CurrentElement call
// is valid without an extra Advance — Vm::seekPkt's literal behavior in
// the original, preserved here rather than left as a surprise for
// callers who expect "seek" to mean only "reposition".
func (v *Vm) SeekPacket(offsetBytes uint64) (bool, error) {
	v.resetForNewPkt(offsetBytes * 8)
	v.pos.state = stBeginPkt
	v.pos.atEnd = false
	return v.Advance()
}

// SavePosition returns a deep copy of the current position, suitable for
// later restoring with RestorePosition. It performs no I/O (no call to
// the data source), matching spec.md's "save/restore position" design
// note.
func (v *Vm) SavePosition() *Position {
	return v.pos.clone()
}

// RestorePosition replaces the Vm's current position with a deep copy of
// p. The Vm's buffer window is dropped — the next read will refill it
// from the data source at the restored offset — since window is not part
// of Position and may no longer correspond to the restored bit cursor.
func (v *Vm) RestorePosition(p *Position) {
	v.pos = *p.clone()
	v.win = window{}
}

// step executes one unit of work: either a single instruction, or one
// outer-state transition. It returns emitted=true when it has produced a
// new element (Advance should return to the caller), done=true at the
// true end of the element sequence, or an error.
func (v *Vm) step() (emitted, done bool, err error) {
	switch v.pos.state {
	case stBeginPkt:
		return v.stateBeginPkt()
	case stExecInstr:
		return v.stateExecInstr()
	case stBeginPktContent:
		return v.stateBeginPktContent()
	case stBeginEr:
		return v.stateBeginEr()
	case stEndEr:
		return v.stateEndEr()
	case stEndPktContent:
		return v.stateEndPktContent()
	case stEndPkt:
		return v.stateEndPkt()
	case stContinueSkipPaddingBits:
		return v.stateContinueSkipPaddingBits()
	case stReadUUIDByte:
		return v.stateReadUUIDByte()
	case stReadSubstrUntilNull:
		return v.stateReadSubstrUntilNull()
	case stReadSubstr:
		return v.stateReadSubstr()
	case stEndStr:
		return v.stateEndStr()
	case stDone:
		return false, true, nil
	default:
		return false, false, decerr.New(decerr.KindPrematureEndOfData, v.globalBitOffset())
	}
}

func (v *Vm) stateBeginPkt() (bool, bool, error) {
	if _, ok := v.src.Data(v.pos.pktStartBits/8, 1); !ok {
		return false, true, nil
	}
	v.resetForNewPkt(v.pos.pktStartBits)
	v.pushFrame(v.pktProc.PreambleProc)
	v.pos.state = stExecInstr
	v.pos.elem = elem.Element{Kind: elem.KindPacketBeginning, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

func (v *Vm) stateBeginPktContent() (bool, bool, error) {
	v.pos.state = stBeginEr
	v.pos.elem = elem.Element{Kind: elem.KindPacketContentBeginning, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

func (v *Vm) stateBeginEr() (bool, bool, error) {
	if v.pos.hasContentLen {
		if v.pos.headBits >= v.pos.contentLenBits {
			v.pos.state = stEndPktContent
			return false, false, nil
		}
	} else if _, ok := v.src.Data(v.globalBitOffset()/8, 1); !ok {
		v.pos.state = stEndPktContent
		return false, false, nil
	}
	if v.pos.curDst == nil {
		return false, false, decerr.New(decerr.KindUnknownDataStreamType, v.globalBitOffset())
	}
	v.pushFrame(v.pos.curDst.ErPreambleProc)
	v.pos.state = stExecInstr
	v.pos.elem = elem.Element{Kind: elem.KindEventRecordBeginning, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

func (v *Vm) stateEndEr() (bool, bool, error) {
	v.pos.state = stBeginEr
	v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

// stateEndPktContent emits the packet content's End element, then, if
// the packet declares a total length longer than what's been consumed so
// far, enters stContinueSkipPaddingBits to skip the trailing padding
// before EndPkt runs — spec §4.5's EndPktContent: "compute padding bits
// until expectedTotalLen; if positive, enter ContinueSkipPaddingBits with
// postSkipBitsState = EndPkt".
func (v *Vm) stateEndPktContent() (bool, bool, error) {
	if v.pos.hasTotalLen && v.pos.totalLenBits > v.pos.headBits {
		v.pos.skipRemBits = v.pos.totalLenBits - v.pos.headBits
		v.pos.postSkipState = stEndPkt
		v.pos.state = stContinueSkipPaddingBits
	} else {
		v.pos.state = stEndPkt
	}
	v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

// stateContinueSkipPaddingBits advances the cursor across packet-end
// padding, one data-source probe at a time, without ever assembling a
// value out of the skipped bits (there is nothing to buffer a window for:
// see window.ensureBits's content-length bound, which this skip must stay
// clear of since padding lies beyond it by definition). A probe that
// returns fewer bytes than asked for — legal per datasource.Source's
// "buffering granularity" allowance, not just at true end of data — only
// advances by what it confirmed, so a source that hands back one byte per
// call still makes forward progress, one Advance-internal step at a time,
// matching spec §4.1's "refills the window one chunk at a time". Only a
// probe that can't supply even one more byte is a real error.
func (v *Vm) stateContinueSkipPaddingBits() (bool, bool, error) {
	if v.pos.skipRemBits == 0 {
		v.pos.state = v.pos.postSkipState
		return false, false, nil
	}
	cur := v.globalBitOffset()
	startByte := cur / 8
	biasBits := cur - startByte*8
	wantBytes := (biasBits + v.pos.skipRemBits + 7) / 8
	if wantBytes > maxStraddleBytes {
		wantBytes = maxStraddleBytes
	}
	data, ok := v.src.Data(startByte, int(wantBytes))
	if !ok || len(data) == 0 {
		return false, false, decerr.New(decerr.KindPrematureEndOfData, cur)
	}
	availBits := uint64(len(data))*8 - biasBits
	step := availBits
	if step > v.pos.skipRemBits {
		step = v.pos.skipRemBits
	}
	v.pos.headBits += step
	v.pos.skipRemBits -= step
	if v.pos.skipRemBits == 0 {
		v.pos.state = v.pos.postSkipState
	}
	return false, false, nil
}

func (v *Vm) stateEndPkt() (bool, bool, error) {
	// Captured before pktStartBits moves: the End element belongs to the
	// packet that just finished, at its content+padding end, not to
	// whatever pktStartBits becomes once it's repointed at the next one.
	offset := v.globalBitOffset()
	if v.pos.hasTotalLen {
		v.pos.state = stBeginPkt
		v.pos.pktStartBits += v.pos.totalLenBits
	} else {
		// No declared total length: there is no well-defined "next
		// packet" to align to, so this is the last packet in the
		// sequence (spec.md's single-packet-stream case).
		v.pos.state = stDone
	}
	v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: offset}
	return true, false, nil
}
