package round

import (
	"errors"
	"testing"
)

func TestRoundOrder(t *testing.T) {
	all := All()
	if len(all) != Count {
		t.Fatalf("expected %d rounds, got %d", Count, len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i].After(all[i-1]) {
			t.Fatalf("expected %s after %s", all[i], all[i-1])
		}
	}
	if WildCard.After(WildCard) {
		t.Fatalf("a round is not after itself")
	}
	if Round("preseason").Index() != -1 {
		t.Fatalf("unknown round must have index -1")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Round
	}{
		{in: "wildcard", want: WildCard},
		{in: "Wild Card", want: WildCard},
		{in: "super_bowl", want: SuperBowl},
		{in: " Conference ", want: Conference},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parse %q: got %s want %s", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("week-17"); !errors.Is(err, ErrUnknownRound) {
		t.Fatalf("expected ErrUnknownRound, got %v", err)
	}
}
