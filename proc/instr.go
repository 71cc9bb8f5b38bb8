// Package proc holds the instruction model the vm package executes: a
// closed alphabet of read instructions, arranged into trees of
// procedures, plus just enough of a trace-type surface (data stream
// types, event record types, clock types) to compile a PktProc by hand.
// Producing a PktProc from textual metadata is out of scope here — that's
// the job of a metadata parser and builder this module never implements —
// so every PktProc in this package's tests is hand-built, the way
// trace/parser_test.go hand-builds raw trace byte streams instead of
// running a real `go tool trace` producer.
package proc

import "golang.org/x/exp/slices"

// InstrKind is the closed alphabet of instructions a Procedure can be made
// of. Fixed-length integer/float/bit-array reads are parameterized by
// width, byte order and signedness rather than exploded into one InstrKind
// per width the way the C++ original's template-generated dispatch table
// does: Go doesn't need a separate function per integer width to get a
// direct, non-virtual read, so collapsing the alphabet here is a
// generalization, not a simplification of behavior.
type InstrKind int

const (
	InstrKindReadFixedLenUInt InstrKind = iota
	InstrKindReadFixedLenSInt
	InstrKindReadFixedLenFloat
	InstrKindReadFixedLenBitArray
	InstrKindReadFixedLenBool
	InstrKindReadVlqUInt
	InstrKindReadVlqSInt
	InstrKindReadNullTerminatedStr

	InstrKindBeginReadScope
	InstrKindEndReadScope
	InstrKindBeginReadStruct
	InstrKindEndReadStruct

	InstrKindBeginReadStaticArray
	InstrKindEndReadStaticArray
	InstrKindBeginReadDynArray
	InstrKindEndReadDynArray
	InstrKindBeginReadStaticTextArray
	InstrKindEndReadStaticTextArray
	InstrKindBeginReadDynTextArray
	InstrKindEndReadDynTextArray

	InstrKindBeginReadVariantSignedSel
	InstrKindBeginReadVariantUnsignedSel
	InstrKindEndReadVariant

	InstrKindBeginReadOptionalBoolSel
	InstrKindBeginReadOptionalUIntSel
	InstrKindBeginReadOptionalSIntSel
	InstrKindEndReadOptional

	InstrKindBeginReadUUIDArray
	InstrKindEndReadUUIDArray

	InstrKindSaveVal
	InstrKindSetCurrentID
	InstrKindSetDst
	InstrKindSetErt
	InstrKindSetPktTotalLen
	InstrKindSetPktContentLen
	InstrKindSetPktMagicNumber
	InstrKindSetPktOriginIndex
	InstrKindSetDsID
	InstrKindSetDsInfo
	InstrKindSetPktInfo
	InstrKindSetErInfo
	InstrKindUpdateDefClk

	InstrKindEndPreambleProc
	InstrKindEndDsPktPreambleProc
	InstrKindEndDsErPreambleProc
	InstrKindEndErProc
)

// Instr is implemented by every instruction. Kind lets the VM switch on
// the concrete type without a type assertion chain.
type Instr interface {
	Kind() InstrKind
}

// Procedure is a flat, ordered instruction list. Subprocedures (struct
// members, array elements, variant/optional branches) are reached through
// a Begin* instruction's Sub field and always end in the matching End*
// instruction, which is how the VM's stack-based executor knows when to
// pop back to the parent procedure without recursing.
type Procedure []Instr

// ReadFixedLenUInt reads a fixed-width unsigned integer, optionally
// latching it into the saved value table for a later dynamic-length array
// or variant/optional selector. Folding it into the default clock is a
// separate UpdateDefClk instruction.
type ReadFixedLenUInt struct {
	Name       string
	LenBits    int
	BigEndian  bool
	AlignBits  int
	Base       int
	SaveAsVal  bool
	SaveValIdx int
	IsEnum     bool
}

func (ReadFixedLenUInt) Kind() InstrKind { return InstrKindReadFixedLenUInt }

// ReadFixedLenSInt reads a fixed-width signed integer.
type ReadFixedLenSInt struct {
	Name       string
	LenBits    int
	BigEndian  bool
	AlignBits  int
	Base       int
	SaveAsVal  bool
	SaveValIdx int
	IsEnum     bool
}

func (ReadFixedLenSInt) Kind() InstrKind { return InstrKindReadFixedLenSInt }

// ReadFixedLenFloat reads a 32- or 64-bit IEEE 754 float.
type ReadFixedLenFloat struct {
	Name      string
	LenBits   int // 32 or 64
	BigEndian bool
	AlignBits int
}

func (ReadFixedLenFloat) Kind() InstrKind { return InstrKindReadFixedLenFloat }

// ReadFixedLenBitArray reads an opaque fixed-width bit array, exposed to
// the consumer as an UnsignedInteger element whose Base is left at 2.
type ReadFixedLenBitArray struct {
	Name      string
	LenBits   int
	BigEndian bool
	AlignBits int
}

func (ReadFixedLenBitArray) Kind() InstrKind { return InstrKindReadFixedLenBitArray }

// ReadFixedLenBool reads a fixed-width field interpreted as a boolean
// (nonzero is true), and may feed an optional's selector.
type ReadFixedLenBool struct {
	LenBits    int
	AlignBits  int
	SaveAsVal  bool
	SaveValIdx int
}

func (ReadFixedLenBool) Kind() InstrKind { return InstrKindReadFixedLenBool }

// ReadVlqUInt reads an LEB128-style variable-length unsigned integer,
// byte-aligned, via the same continuation-bit convention
// encoding/binary.Uvarint uses.
type ReadVlqUInt struct {
	Name       string
	SaveAsVal  bool
	SaveValIdx int
}

func (ReadVlqUInt) Kind() InstrKind { return InstrKindReadVlqUInt }

// ReadVlqSInt is ReadVlqUInt's zig-zag-encoded signed counterpart, read
// via encoding/binary.Varint's sign convention.
type ReadVlqSInt struct {
	Name string
}

func (ReadVlqSInt) Kind() InstrKind { return InstrKindReadVlqSInt }

// ReadNullTerminatedStr reads a byte-aligned, null-terminated string.
type ReadNullTerminatedStr struct {
	Name string
}

func (ReadNullTerminatedStr) Kind() InstrKind { return InstrKindReadNullTerminatedStr }

// BeginReadScope marks the start of a named scope (e.g. packet header,
// packet context, event record header) that produces no element of its
// own but groups the instructions that follow until the matching end
// marker of Sub.
type BeginReadScope struct {
	Name      string
	AlignBits int
	Sub       Procedure
}

func (BeginReadScope) Kind() InstrKind { return InstrKindBeginReadScope }

type EndReadScope struct{}

func (EndReadScope) Kind() InstrKind { return InstrKindEndReadScope }

// BeginReadStruct/EndReadStruct bracket a structure's members.
type BeginReadStruct struct {
	Name      string
	AlignBits int
	Sub       Procedure
}

func (BeginReadStruct) Kind() InstrKind { return InstrKindBeginReadStruct }

type EndReadStruct struct{}

func (EndReadStruct) Kind() InstrKind { return InstrKindEndReadStruct }

// BeginReadStaticArray/EndReadStaticArray bracket a fixed-length array.
type BeginReadStaticArray struct {
	Name      string
	Len       uint64
	AlignBits int
	Sub       Procedure
}

func (BeginReadStaticArray) Kind() InstrKind { return InstrKindBeginReadStaticArray }

type EndReadStaticArray struct{}

func (EndReadStaticArray) Kind() InstrKind { return InstrKindEndReadStaticArray }

// BeginReadDynArray/EndReadDynArray bracket an array whose length was
// saved earlier in the packet via a SaveVal-tagged instruction.
type BeginReadDynArray struct {
	Name      string
	LenValIdx int
	AlignBits int
	Sub       Procedure
}

func (BeginReadDynArray) Kind() InstrKind { return InstrKindBeginReadDynArray }

type EndReadDynArray struct{}

func (EndReadDynArray) Kind() InstrKind { return InstrKindEndReadDynArray }

// BeginReadStaticTextArray/EndReadStaticTextArray bracket a fixed-length
// array of bytes interpreted as text (no null terminator; length is the
// element count).
type BeginReadStaticTextArray struct {
	Name      string
	Len       uint64
	AlignBits int
}

func (BeginReadStaticTextArray) Kind() InstrKind { return InstrKindBeginReadStaticTextArray }

type EndReadStaticTextArray struct{}

func (EndReadStaticTextArray) Kind() InstrKind { return InstrKindEndReadStaticTextArray }

// BeginReadDynTextArray/EndReadDynTextArray is BeginReadStaticTextArray's
// saved-length counterpart.
type BeginReadDynTextArray struct {
	Name      string
	LenValIdx int
	AlignBits int
}

func (BeginReadDynTextArray) Kind() InstrKind { return InstrKindBeginReadDynTextArray }

type EndReadDynTextArray struct{}

func (EndReadDynTextArray) Kind() InstrKind { return InstrKindEndReadDynTextArray }

// VariantRange is one arm of a variant: a closed [Lo, Hi] selector range
// (both ends inclusive) mapped to a subprocedure. Selector ranges across all of a
// variant's arms must be pairwise disjoint; that invariant is the
// builder's responsibility, not the VM's, and is simply assumed here.
type VariantRange struct {
	Lo, Hi int64
	Sub    Procedure
}

// BeginReadVariantSignedSel/BeginReadVariantUnsignedSel select one of
// several subprocedures by comparing a previously saved selector value
// against each arm's range, linearly, in order (small arm counts are the
// overwhelmingly common case, so a linear scan beats building a sorted
// index for a one-shot lookup).
type BeginReadVariantSignedSel struct {
	Name      string
	SelValIdx int
	Ranges    []VariantRange
}

func (BeginReadVariantSignedSel) Kind() InstrKind { return InstrKindBeginReadVariantSignedSel }

type BeginReadVariantUnsignedSel struct {
	Name      string
	SelValIdx int
	Ranges    []VariantRange
}

func (BeginReadVariantUnsignedSel) Kind() InstrKind { return InstrKindBeginReadVariantUnsignedSel }

// SortRanges orders a variant's arms by Lo, ascending. The VM itself
// scans Ranges linearly regardless of order, so this buys nothing at
// decode time; it exists so a builder (or, here, a hand-built fixture)
// can hand the VM a range set in a predictable, reviewable order instead
// of whatever order its arms were declared in.
func SortRanges(ranges []VariantRange) []VariantRange {
	out := append([]VariantRange(nil), ranges...)
	slices.SortFunc(out, func(a, b VariantRange) bool { return a.Lo < b.Lo })
	return out
}

type EndReadVariant struct{}

func (EndReadVariant) Kind() InstrKind { return InstrKindEndReadVariant }

// BeginReadOptionalBoolSel reads Sub only if the previously saved boolean
// selector value is nonzero; otherwise it produces no element at all and
// execution continues with the instruction after this one.
type BeginReadOptionalBoolSel struct {
	Name      string
	SelValIdx int
	Sub       Procedure
}

func (BeginReadOptionalBoolSel) Kind() InstrKind { return InstrKindBeginReadOptionalBoolSel }

// OptSelectorRange is a closed [Lo, Hi] range over an integer-selector
// optional's selector value within which the optional's subprocedure is
// present, analogous to VariantRange but without a per-range Sub: an
// optional only ever has the one subprocedure, present or not.
type OptSelectorRange struct {
	Lo, Hi int64
}

// BeginReadOptionalUIntSel reads Sub only if the previously saved
// unsigned selector value falls within one of Ranges; otherwise it
// produces no element at all and execution continues with the
// instruction after this one, exactly like BeginReadOptionalBoolSel.
type BeginReadOptionalUIntSel struct {
	Name      string
	SelValIdx int
	Ranges    []OptSelectorRange
	Sub       Procedure
}

func (BeginReadOptionalUIntSel) Kind() InstrKind { return InstrKindBeginReadOptionalUIntSel }

// BeginReadOptionalSIntSel is BeginReadOptionalUIntSel's signed-selector
// counterpart.
type BeginReadOptionalSIntSel struct {
	Name      string
	SelValIdx int
	Ranges    []OptSelectorRange
	Sub       Procedure
}

func (BeginReadOptionalSIntSel) Kind() InstrKind { return InstrKindBeginReadOptionalSIntSel }

type EndReadOptional struct{}

func (EndReadOptional) Kind() InstrKind { return InstrKindEndReadOptional }

// BeginReadUUIDArray/EndReadUUIDArray bracket the fixed 16-byte read that
// produces a TraceTypeUUID element.
type BeginReadUUIDArray struct {
	AlignBits int
}

func (BeginReadUUIDArray) Kind() InstrKind { return InstrKindBeginReadUUIDArray }

type EndReadUUIDArray struct{}

func (EndReadUUIDArray) Kind() InstrKind { return InstrKindEndReadUUIDArray }

// SaveVal copies the most recently read integer value into the saved
// value table, for later consumption by a dynamic-length array or a
// variant/optional selector. Most integer-reading instructions above can
// do this inline via their own SaveAsVal field; SaveVal exists for
// procedures that need to save a value read by an instruction that
// doesn't have room for the flag (kept for symmetry with the original's
// dedicated SAVE_VAL opcode).
type SaveVal struct {
	ValIdx int
}

func (SaveVal) Kind() InstrKind { return InstrKindSaveVal }

// SetCurrentID records the most recently read integer as the "current ID"
// used by the next SetDst/SetErt to select a type.
type SetCurrentID struct{}

func (SetCurrentID) Kind() InstrKind { return InstrKindSetCurrentID }

// SetDst selects the data stream type to use for the rest of this packet
// from the current ID (set by SetCurrentID), or from DefaultDataStreamType
// if there is exactly one data stream type and no ID was ever read.
type SetDst struct{}

func (SetDst) Kind() InstrKind { return InstrKindSetDst }

// SetErt selects the event record type to use for the current event
// record from the current ID, analogous to SetDst.
type SetErt struct{}

func (SetErt) Kind() InstrKind { return InstrKindSetErt }

// SetPktTotalLen/SetPktContentLen record the packet's expected total and
// content length (in bits) from the most recently read integer, each
// cross-validated against the other and against the current offset in the
// packet. Only the total length must be a multiple of 8.
type SetPktTotalLen struct{}

func (SetPktTotalLen) Kind() InstrKind { return InstrKindSetPktTotalLen }

type SetPktContentLen struct{}

func (SetPktContentLen) Kind() InstrKind { return InstrKindSetPktContentLen }

// SetPktMagicNumber emits a PacketMagicNumber element for the most
// recently read integer.
type SetPktMagicNumber struct{}

func (SetPktMagicNumber) Kind() InstrKind { return InstrKindSetPktMagicNumber }

// SetPktOriginIndex records the most recently read integer as the
// packet's origin index. The PacketInfo element does not carry it.
type SetPktOriginIndex struct{}

func (SetPktOriginIndex) Kind() InstrKind { return InstrKindSetPktOriginIndex }

// SetDsID records the most recently read integer as the data stream ID,
// exposed on the next DataStreamInfo element.
type SetDsID struct{}

func (SetDsID) Kind() InstrKind { return InstrKindSetDsID }

// SetDsInfo/SetPktInfo/SetErInfo emit the DataStreamInfo/PacketInfo/
// EventRecordInfo summary elements from what has accumulated so far:
// DataStreamInfo carries the ID recorded by SetDsID; PacketInfo carries
// the lengths recorded by SetPktTotalLen/SetPktContentLen and the current
// default clock value; EventRecordInfo carries the ID of the event record
// type selected by SetErt.
type SetDsInfo struct{}

func (SetDsInfo) Kind() InstrKind { return InstrKindSetDsInfo }

type SetPktInfo struct{}

func (SetPktInfo) Kind() InstrKind { return InstrKindSetPktInfo }

type SetErInfo struct{}

func (SetErInfo) Kind() InstrKind { return InstrKindSetErInfo }

// UpdateDefClk folds the most recently read integer into the data stream
// type's default clock accumulator, handling a single assumed wraparound
// the way vm.hpp's updateDefClkVal does.
type UpdateDefClk struct {
	LenBits int
}

func (UpdateDefClk) Kind() InstrKind { return InstrKindUpdateDefClk }

// EndPreambleProc/EndDsPktPreambleProc/EndDsErPreambleProc/EndErProc are
// the markers that close, respectively, the trace-level packet preamble,
// a data stream type's packet preamble, its event record preamble, and an
// event record type's payload procedure. Reaching one tells the VM's
// outer state machine which transition to take next (there is no
// "returning" from a Procedure other than through one of these).
type EndPreambleProc struct{}

func (EndPreambleProc) Kind() InstrKind { return InstrKindEndPreambleProc }

type EndDsPktPreambleProc struct{}

func (EndDsPktPreambleProc) Kind() InstrKind { return InstrKindEndDsPktPreambleProc }

type EndDsErPreambleProc struct{}

func (EndDsErPreambleProc) Kind() InstrKind { return InstrKindEndDsErPreambleProc }

type EndErProc struct{}

func (EndErProc) Kind() InstrKind { return InstrKindEndErProc }
