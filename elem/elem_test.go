package elem

import "testing"

func TestKindStringCoversWholeEnum(t *testing.T) {
	for k := KindPacketBeginning; k <= KindEnd; k++ {
		if got := k.String(); got == "Unknown" {
			t.Errorf("Kind(%d).String() = %q, want a named case", int(k), got)
		}
	}
}

func TestKindStringUnknownValue(t *testing.T) {
	if got := Kind(-1).String(); got != "Unknown" {
		t.Errorf("Kind(-1).String() = %q, want Unknown", got)
	}
}
