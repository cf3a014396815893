package round

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRound = errors.New("unknown round")

// Round is one playoff stage. The zero value is not a valid round.
type Round string

const (
	WildCard   Round = "wildcard"
	Divisional Round = "divisional"
	Conference Round = "conference"
	SuperBowl  Round = "superbowl"
)

var order = [...]Round{WildCard, Divisional, Conference, SuperBowl}

var labels = map[Round]string{
	WildCard:   "Wild Card",
	Divisional: "Divisional",
	Conference: "Conference",
	SuperBowl:  "Super Bowl",
}

// All returns the four rounds in playoff order.
func All() []Round {
	return append([]Round(nil), order[:]...)
}

// Count is the number of playoff rounds.
const Count = len(order)

// Index reports the position in playoff order, or -1 for an unknown round.
func (r Round) Index() int {
	for i, candidate := range order {
		if candidate == r {
			return i
		}
	}
	return -1
}

func (r Round) Valid() bool {
	return r.Index() >= 0
}

// After reports whether r is played strictly later than other.
func (r Round) After(other Round) bool {
	return r.Index() > other.Index()
}

func (r Round) Label() string {
	if label, ok := labels[r]; ok {
		return label
	}
	return string(r)
}

func (r Round) String() string {
	return string(r)
}

// Parse accepts the canonical key ("wildcard") or the display label ("Wild Card").
func Parse(raw string) (Round, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(value)
	for _, candidate := range order {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRound, raw)
}
