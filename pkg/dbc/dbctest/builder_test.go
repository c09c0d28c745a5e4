package dbctest

import (
	"errors"
	"testing"

	"github.com/Faultbox/mapgen/pkg/dbc"
)

func TestBuilder_SharesStrings(t *testing.T) {
	b := NewBuilder(2)
	if err := b.Add(1, "Water"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := b.Add(2, "Water"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := b.Add(1, 2, 3); !errors.Is(err, dbc.ErrRecordSize) {
		t.Errorf("expected ErrRecordSize for too many values, got %v", err)
	}
	if err := b.Add(1, 2.5); err == nil {
		t.Error("expected error for float64 value")
	}

	f, err := dbc.Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if f.StringSize() != len("Water")+2 {
		t.Errorf("expected interned string block of %d bytes, got %d", len("Water")+2, f.StringSize())
	}
	if f.Record(0).Uint32(1) != f.Record(1).Uint32(1) {
		t.Error("identical strings should share an offset")
	}
}
