package vm

import (
	"github.com/google/uuid"
	"github.com/kienanstewart/yactfr/elem"
	"github.com/kienanstewart/yactfr/proc"
)

// state is the outer state machine's current node (spec §4.5).
type state int

const (
	stBeginPkt state = iota
	stBeginPktContent
	stExecInstr
	stBeginEr
	stEndEr
	stEndPktContent
	stEndPkt
	stContinueSkipPaddingBits
	stReadUUIDByte
	stReadSubstrUntilNull
	stReadSubstr
	stEndStr
	stDone
)

// frame is one level of the instruction-pointer stack vm.hpp calls
// VmStackFrame: a procedure, the next instruction to execute in it, and —
// for array element subprocedures only — how many more passes through it
// remain. There is deliberately no recursive Go call stack behind this:
// every nested scope (struct, array, variant, optional) is a pushed frame
// here, which is what lets a position be saved and restored as plain data
// instead of an unwindable call stack.
type frame struct {
	proc     proc.Procedure
	idx      int
	isArray  bool
	remElems uint64
	// textBytes accumulates a text array's content across stReadSubstr's
	// refills, between the Begin element (which only carries Len) and the
	// End element (which carries the fully assembled bytes); nil for
	// every other kind of frame. For a text array frame, remElems instead
	// tracks the number of content bytes still to be refilled, not an
	// element count.
	textBytes []byte
}

// Position is an iterator's complete, copyable decoding state: the bit
// cursor, the instruction-pointer stack, the saved-value table, and the
// handful of scalars a packet preamble accumulates (expected lengths, the
// selected data stream/event record types, the default clock value).
// Unlike the C++ original, which relocates a raw pointer into its scratch
// Elements struct by address-difference arithmetic when deep-copying a
// position (vm.hpp's ItInfos::elemFromOther), this Position carries no
// pointers into VM-owned memory at all — elem is a plain value, so Save
// and Restore are an ordinary (if elaborate) value copy. That's the safer
// redesign spec.md's own design notes call for, applied directly.
type Position struct {
	state state
	stack []frame

	savedVals []uint64

	pktStartBits uint64
	headBits     uint64

	hasTotalLen   bool
	totalLenBits  uint64
	hasContentLen bool
	contentLenBits uint64

	// skipRemBits and postSkipState drive stContinueSkipPaddingBits: the
	// number of padding bits still to skip before resuming at
	// postSkipState, spec §4.5's "remembering the state to restore in
	// postSkipBitsState".
	skipRemBits    uint64
	postSkipState  state

	hasMagicNumber bool
	magicNumber    uint32

	hasOriginIndex bool
	originIndex    uint64

	hasDsID bool
	dsID    uint64

	hasUUID bool
	uuid    uuid.UUID

	hasCurID bool
	curID    uint64

	curDst *proc.DataStreamType
	curErt *proc.EventRecordType

	defClk defClkAccum

	lastVal       uint64
	lastValSigned int64

	uuidBuf [16]byte
	uuidIdx int

	// partialByte* track the byte order of the most recent read that left
	// a byte partially consumed, so the next unaligned read touching that
	// same byte can be checked against it (spec's ByteOrderChangeWithinByte
	// invariant: a single byte's bits must all be interpreted under one
	// byte order).
	partialByte      bool
	partialByteIdx   uint64
	partialBigEndian bool

	elem elem.Element

	mark  uint64
	atEnd bool
}

// Compare totally orders two positions the way vm.hpp's ItInfos comparison
// operators do: primarily by bit offset, and for two positions at the same
// offset (common, since elements such as PacketBeginning and
// PacketContentBeginning consume no bits) by mark, a monotonic
// per-Advance counter.
func (p *Position) Compare(other *Position) int {
	a := p.pktStartBits + p.headBits
	b := other.pktStartBits + other.headBits
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case p.mark < other.mark:
		return -1
	case p.mark > other.mark:
		return 1
	default:
		return 0
	}
}

func (p *Position) Equal(other *Position) bool { return p.Compare(other) == 0 }
func (p *Position) Less(other *Position) bool  { return p.Compare(other) < 0 }

// clone deep-copies a Position, including its stack and saved-value
// table, so that a later mutation of either the original or the clone
// never aliases the other's slices.
func (p *Position) clone() *Position {
	c := *p
	c.stack = append([]frame(nil), p.stack...)
	c.savedVals = append([]uint64(nil), p.savedVals...)
	return &c
}
