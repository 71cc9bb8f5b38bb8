package decerr

import (
	"errors"
	"strings"
	"testing"
)

func TestIsMatchesOnKindAlone(t *testing.T) {
	err := WithID(KindUnknownEventRecordType, 128, 7)
	if !errors.Is(err, ErrUnknownEventRecordType) {
		t.Fatal("expected errors.Is to match the sentinel by kind")
	}
	if errors.Is(err, ErrUnknownDataStreamType) {
		t.Fatal("expected errors.Is to reject a different kind's sentinel")
	}
}

func TestErrorStringCarriesOffset(t *testing.T) {
	err := New(KindPrematureEndOfData, 42)
	got := err.Error()
	if got == "" {
		t.Fatal("expected a non-empty error string")
	}
	if !strings.Contains(got, "42") {
		t.Fatalf("Error() = %q, want it to mention bit offset 42", got)
	}
	if err.OffsetBits != 42 {
		t.Fatalf("OffsetBits = %d, want 42", err.OffsetBits)
	}
}
