package proc

import "testing"

// TestMinimalPktProcShape is a smoke test that MinimalPktProc wires in a
// default data stream type and a default event record type, the two
// lookups the vm package falls back on when no ID is read.
func TestMinimalPktProcShape(t *testing.T) {
	pp := MinimalPktProc()
	if pp.TraceType.DefaultDataStreamType == nil {
		t.Fatal("expected a default data stream type")
	}
	if pp.TraceType.DefaultDataStreamType.DefaultEventRecordType == nil {
		t.Fatal("expected a default event record type")
	}
}

func TestDynamicArrayPktProcSavesLenAtIndexZero(t *testing.T) {
	pp := DynamicArrayPktProc()
	if pp.SavedValsCount != 1 {
		t.Fatalf("SavedValsCount = %d, want 1", pp.SavedValsCount)
	}
	ert := pp.TraceType.DefaultDataStreamType.DefaultEventRecordType
	lenInstr, ok := ert.Proc[0].(ReadFixedLenUInt)
	if !ok {
		t.Fatalf("Proc[0] = %T, want ReadFixedLenUInt", ert.Proc[0])
	}
	if !lenInstr.SaveAsVal || lenInstr.SaveValIdx != 0 {
		t.Fatal("expected the len field to save into index 0")
	}
	arr, ok := ert.Proc[1].(BeginReadDynArray)
	if !ok {
		t.Fatalf("Proc[1] = %T, want BeginReadDynArray", ert.Proc[1])
	}
	if arr.LenValIdx != 0 {
		t.Fatalf("LenValIdx = %d, want 0", arr.LenValIdx)
	}
}

func TestVariantPktProcRangesAreDisjoint(t *testing.T) {
	pp := VariantPktProc()
	ert := pp.TraceType.DefaultDataStreamType.DefaultEventRecordType
	v, ok := ert.Proc[1].(BeginReadVariantUnsignedSel)
	if !ok {
		t.Fatalf("Proc[1] = %T, want BeginReadVariantUnsignedSel", ert.Proc[1])
	}
	for i, a := range v.Ranges {
		for j, b := range v.Ranges {
			if i == j {
				continue
			}
			if a.Lo <= b.Hi && b.Lo <= a.Hi {
				t.Fatalf("ranges %v and %v overlap", a, b)
			}
		}
	}
}

func TestMultiErtPktProcHasNoDefaultEventRecordType(t *testing.T) {
	pp := MultiErtPktProc()
	dst := pp.TraceType.DefaultDataStreamType
	if dst.DefaultEventRecordType != nil {
		t.Fatal("expected no default event record type, so an unknown id surfaces as an error")
	}
	if len(dst.EventRecordTypes) != 2 {
		t.Fatalf("got %d event record types, want 2", len(dst.EventRecordTypes))
	}
}
