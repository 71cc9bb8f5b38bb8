package proc

// This file hand-builds a handful of small PktProcs directly, the way
// trace/parser_test.go hand-builds raw trace byte streams instead of
// running a real producer: turning textual trace metadata into a PktProc
// is the builder's job, and the builder isn't part of this module. Each
// function here is grounded in one shape of trace a builder might
// plausibly emit, and exists so the vm package's tests (and anyone
// experimenting with the VM directly) have a PktProc to run without
// needing one.

// MinimalPktProc describes the simplest possible trace: a single data
// stream type with no header fields at all, and a single event record
// type whose only member is one byte-aligned 8-bit unsigned integer named
// "value". There is no packet total/content length, so the whole stream
// is one packet whose content is every available byte, one event record
// per byte; the packet, and the element sequence, end once the data
// source can't supply another byte.
func MinimalPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 8, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// ClockPktProc describes a trace with one default clock, a 16-bit
// little-endian clock snapshot field read at the start of each event
// record and folded into the data stream's default clock accumulator.
// Event records carry no other fields.
func ClockPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "ts", LenBits: 16, BigEndian: false},
			UpdateDefClk{LenBits: 16},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		DefaultClock:           &ClockType{Name: "default"},
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// DynamicArrayPktProc describes a trace whose one event record type first
// reads an 8-bit "len" field, saves it, then reads that many 8-bit
// unsigned integers as an array element named "elem".
func DynamicArrayPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "len", LenBits: 8, BigEndian: true, SaveAsVal: true, SaveValIdx: 0},
			BeginReadDynArray{
				Name:      "arr",
				LenValIdx: 0,
				Sub: Procedure{
					ReadFixedLenUInt{Name: "elem", LenBits: 8, BigEndian: true},
					EndReadDynArray{},
				},
			},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}, SavedValsCount: 1}
}

// VariantPktProc describes a trace whose one event record type reads an
// 8-bit unsigned "tag" field, saves it, then reads one of two variant
// arms selected by that tag: [0,5] is an 8-bit unsigned integer, [6,10]
// is a 16-bit little-endian unsigned integer.
func VariantPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "tag", LenBits: 8, BigEndian: true, SaveAsVal: true, SaveValIdx: 0},
			BeginReadVariantUnsignedSel{
				Name:      "val",
				SelValIdx: 0,
				Ranges: SortRanges([]VariantRange{
					{Lo: 6, Hi: 10, Sub: Procedure{
						ReadFixedLenUInt{Name: "u16le", LenBits: 16, BigEndian: false},
						EndReadVariant{},
					}},
					{Lo: 0, Hi: 5, Sub: Procedure{
						ReadFixedLenUInt{Name: "u8", LenBits: 8, BigEndian: true},
						EndReadVariant{},
					}},
				}),
			},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}, SavedValsCount: 1}
}

// StringPktProc describes a trace whose one event record type reads a
// single null-terminated string field named "msg" and nothing else.
func StringPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadNullTerminatedStr{Name: "msg"},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// PacketLenPktProc describes a trace whose packet preamble reads two
// 8-bit fields, "total_len" and "content_len", interpreted directly as
// bit counts (not multiplied, unlike a real CTF packet-size field in
// bytes) so small fixture values can exercise large skips without a
// large buffer. Its one event record type reads a single 8-bit "value"
// field. A packet whose declared total length exceeds its content length
// therefore has trailing padding bits the VM must skip before starting
// the next packet.
func PacketLenPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 8, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc: Procedure{
			ReadFixedLenUInt{Name: "total_len", LenBits: 8, BigEndian: true},
			SetPktTotalLen{},
			ReadFixedLenUInt{Name: "content_len", LenBits: 8, BigEndian: true},
			SetPktContentLen{},
			EndDsPktPreambleProc{},
		},
		ErPreambleProc: Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// ClockLenPktProc is ClockPktProc generalized to an arbitrary clock field
// width and bounded by a declared packet content length (read from a
// 16-bit header field, in bits, counted from the start of the packet),
// rather than relying on the data source running dry. This keeps a
// buffer whose clock fields don't end on a byte boundary from being
// misread as containing one more (all-zero-padding) event record than it
// actually does.
func ClockLenPktProc(lenBits int) *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "ts", LenBits: lenBits, BigEndian: true},
			UpdateDefClk{LenBits: lenBits},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		DefaultClock:           &ClockType{Name: "default"},
		PktPreambleProc: Procedure{
			ReadFixedLenUInt{Name: "content_len", LenBits: 16, BigEndian: true},
			SetPktContentLen{},
			EndDsPktPreambleProc{},
		},
		ErPreambleProc: Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// StructPktProc describes a trace whose one event record type reads a
// two-member structure named "point" ("x" then "y", both 8-bit
// unsigned) and nothing else.
func StructPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			BeginReadStruct{
				Name: "point",
				Sub: Procedure{
					ReadFixedLenUInt{Name: "x", LenBits: 8, BigEndian: true},
					ReadFixedLenUInt{Name: "y", LenBits: 8, BigEndian: true},
					EndReadStruct{},
				},
			},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// StaticArrayPktProc describes a trace whose one event record type reads
// a fixed-length array of three 8-bit unsigned integers named "arr".
func StaticArrayPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			BeginReadStaticArray{
				Name: "arr",
				Len:  3,
				Sub: Procedure{
					ReadFixedLenUInt{Name: "elem", LenBits: 8, BigEndian: true},
					EndReadStaticArray{},
				},
			},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// TextArrayPktProc describes a trace whose one event record type reads a
// 12-byte static text array named "tag" (deliberately longer than a
// single 9-byte refill, to exercise ReadSubstr spanning more than one
// chunk), then an 8-bit "len" field, then a dynamic text array of that
// many bytes named "msg".
func TextArrayPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			BeginReadStaticTextArray{Name: "tag", Len: 12},
			EndReadStaticTextArray{},
			ReadFixedLenUInt{Name: "len", LenBits: 8, BigEndian: true, SaveAsVal: true, SaveValIdx: 0},
			BeginReadDynTextArray{Name: "msg", LenValIdx: 0},
			EndReadDynTextArray{},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}, SavedValsCount: 1}
}

// UUIDPktProc describes a trace whose trace-level preamble reads a
// 16-byte UUID before dispatching to its one data stream type, whose one
// event record type reads a single 8-bit "value" field.
func UUIDPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 8, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{
		TraceType: tt,
		PreambleProc: Procedure{
			BeginReadUUIDArray{},
			EndReadUUIDArray{},
			EndPreambleProc{},
		},
	}
}

// FloatPktProc describes a trace whose one event record type reads a
// single big-endian 32-bit IEEE 754 float named "f32".
func FloatPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenFloat{Name: "f32", LenBits: 32, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// VlqPktProc describes a trace whose one event record type reads a
// variable-length unsigned integer named "u" followed by a
// variable-length signed integer named "s".
func VlqPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadVlqUInt{Name: "u"},
			ReadVlqSInt{Name: "s"},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// EnumPktProc describes a trace whose one event record type reads an
// 8-bit unsigned enumeration named "ue" followed by an 8-bit signed
// enumeration named "se".
func EnumPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "ue", LenBits: 8, BigEndian: true, IsEnum: true},
			ReadFixedLenSInt{Name: "se", LenBits: 8, BigEndian: true, IsEnum: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}

// PktInfoPktProc describes a trace whose trace-level preamble reads a
// 32-bit magic number and an 8-bit data stream ID, latching each into its
// own summary element (PacketMagicNumber, then DataStreamInfo once the
// data stream type is selected), and whose event record preamble reads
// an 8-bit ID, selects the event record type, and latches it into an
// EventRecordInfo element.
func PktInfoPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 8, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc: Procedure{
			SetPktInfo{},
			EndDsPktPreambleProc{},
		},
		ErPreambleProc: Procedure{
			ReadFixedLenUInt{Name: "id", LenBits: 8, BigEndian: true},
			SetCurrentID{},
			SetErt{},
			SetErInfo{},
			EndDsErPreambleProc{},
		},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{
		TraceType: tt,
		PreambleProc: Procedure{
			ReadFixedLenUInt{Name: "magic", LenBits: 32, BigEndian: true},
			SetPktMagicNumber{},
			ReadFixedLenUInt{Name: "ds_id", LenBits: 8, BigEndian: true},
			SetCurrentID{},
			SetDsID{},
			SetDst{},
			SetDsInfo{},
			EndPreambleProc{},
		},
	}
}

// OptionalIntSelPktProc describes a trace whose one event record type
// reads an 8-bit unsigned "sel" field, saves it, then reads an 8-bit
// unsigned "opt" field only if sel falls within [1, 3].
func OptionalIntSelPktProc() *PktProc {
	ert := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "sel", LenBits: 8, BigEndian: true, SaveAsVal: true, SaveValIdx: 0},
			BeginReadOptionalUIntSel{
				Name:      "opt",
				SelValIdx: 0,
				Ranges:    []OptSelectorRange{{Lo: 1, Hi: 3}},
				Sub: Procedure{
					ReadFixedLenUInt{Name: "opt", LenBits: 8, BigEndian: true},
					EndReadOptional{},
				},
			},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:                     0,
		EventRecordTypes:       map[uint64]*EventRecordType{0: ert},
		DefaultEventRecordType: ert,
		PktPreambleProc:        Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc:         Procedure{EndDsErPreambleProc{}},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}, SavedValsCount: 1}
}

// MultiErtPktProc describes a trace with a single data stream type
// carrying two event record types, reached by an 8-bit "id" field read
// in the event record header (not the trace-level preamble). The data
// stream type has no DefaultEventRecordType, so a header id absent from
// its EventRecordTypes map surfaces as UnknownEventRecordType rather
// than silently falling back to anything.
func MultiErtPktProc() *PktProc {
	ert0 := &EventRecordType{
		ID: 0,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 8, BigEndian: true},
			EndErProc{},
		},
	}
	ert1 := &EventRecordType{
		ID: 1,
		Proc: Procedure{
			ReadFixedLenUInt{Name: "value", LenBits: 16, BigEndian: true},
			EndErProc{},
		},
	}
	dst := &DataStreamType{
		ID:               0,
		EventRecordTypes: map[uint64]*EventRecordType{0: ert0, 1: ert1},
		PktPreambleProc:  Procedure{EndDsPktPreambleProc{}},
		ErPreambleProc: Procedure{
			ReadFixedLenUInt{Name: "id", LenBits: 8, BigEndian: true},
			SetCurrentID{},
			SetErt{},
			EndDsErPreambleProc{},
		},
	}
	tt := &TraceType{
		DataStreamTypes:       map[uint64]*DataStreamType{0: dst},
		DefaultDataStreamType: dst,
	}
	return &PktProc{TraceType: tt, PreambleProc: Procedure{EndPreambleProc{}}}
}
