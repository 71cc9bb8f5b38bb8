package proc

import "github.com/google/uuid"

// ClockType is the minimal description of a clock the VM needs: enough to
// turn a raw cycle count into a nameable DefaultClockValue element. Unit
// conversion (cycles to nanoseconds) is left to the consumer, the way
// spec.md leaves "interpreting" a decoded value as an external concern.
type ClockType struct {
	Name       string
	FreqHz     uint64
	OffsetCycles uint64
}

// EventRecordType is one named, ID-selected payload shape within a data
// stream type.
type EventRecordType struct {
	ID   uint64
	Name string
	Proc Procedure // must end in EndErProc
}

// DataStreamType groups the event record types that can appear in one of
// its packets, along with the per-data-stream-type parts of the packet
// preamble (context fields read after the trace-level preamble picks this
// type) and the common part of every event record's preamble (read before
// the event record's own ID selects an EventRecordType).
type DataStreamType struct {
	ID                 uint64
	Name               string
	EventRecordTypes   map[uint64]*EventRecordType
	DefaultEventRecordType *EventRecordType // used when there's exactly one ERT and no ID was read
	DefaultClock       *ClockType

	// PktPreambleProc reads this data stream type's own packet context
	// fields (e.g. discarded event record counter, packet sequence
	// number) and must end in EndDsPktPreambleProc.
	PktPreambleProc Procedure

	// ErPreambleProc reads the common part of every event record's
	// preamble in this data stream (e.g. its type ID) and must end in
	// EndDsErPreambleProc.
	ErPreambleProc Procedure
}

// TraceType is the trace-wide root: its UUID (if any) and the set of data
// stream types a packet's preamble can select between.
type TraceType struct {
	UUID               uuid.UUID
	HasUUID            bool
	DataStreamTypes    map[uint64]*DataStreamType
	DefaultDataStreamType *DataStreamType // used when there's exactly one DST and no ID was read
}

// PktProc is the root the VM executes: the trace-level packet preamble
// (magic number, UUID, total/content length, data stream ID — whatever
// subset of those a concrete trace format actually uses) followed by a
// dispatch to the selected DataStreamType's own preambles and event
// record types.
//
// PktProc is normally produced by lowering a textual metadata trace-type
// tree; that lowering step is out of scope here, so every PktProc in this
// module's tests is constructed directly, field by field.
type PktProc struct {
	TraceType *TraceType

	// PreambleProc reads the trace-level packet preamble and must end in
	// EndPreambleProc.
	PreambleProc Procedure

	// SavedValsCount sizes the VM's saved-value table; it must be at
	// least one more than the highest SaveValIdx/LenValIdx/SelValIdx any
	// instruction in this PktProc's tree uses.
	SavedValsCount int
}
