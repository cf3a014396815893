package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
}

func TestSequence_NewID(t *testing.T) {
	seq := &Sequence{Prefix: "p-"}
	a, _ := seq.NewID()
	b, _ := seq.NewID()
	if a != "p-1" || b != "p-2" {
		t.Fatalf("unexpected ids: %q %q", a, b)
	}
}
