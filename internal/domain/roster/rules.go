package roster

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

var (
	ErrIncompleteRoster   = errors.New("incomplete roster")
	ErrDuplicateTeam      = errors.New("only one player per team")
	ErrIneligiblePosition = errors.New("position not allowed in slot")
	ErrUnknownSlot        = errors.New("unknown slot")
)

// IncompleteRosterError names the first unfilled slot in schema order.
type IncompleteRosterError struct {
	Slot SlotKey
}

func (e *IncompleteRosterError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteRoster, e.Slot)
}

func (e *IncompleteRosterError) Unwrap() error {
	return ErrIncompleteRoster
}

// MissingSlot extracts the slot from an incomplete-roster error.
func MissingSlot(err error) (SlotKey, bool) {
	var target *IncompleteRosterError
	if errors.As(err, &target) {
		return target.Slot, true
	}
	return "", false
}

// Roster maps each slot to the drafted player.
type Roster map[SlotKey]player.Player

// Validate checks completeness, rejects keys outside the schema, then checks team
// uniqueness. Eligibility is not checked here; the draft session enforces it when
// a player is picked.
func Validate(r Roster) error {
	for _, s := range schema {
		if _, ok := r[s.Key]; !ok {
			return &IncompleteRosterError{Slot: s.Key}
		}
	}
	if len(r) > len(schema) {
		for key := range r {
			if _, ok := SlotByKey(key); !ok {
				return fmt.Errorf("%w: %s", ErrUnknownSlot, key)
			}
		}
	}

	seen := make(map[string]SlotKey, len(r))
	for _, s := range schema {
		teamID := r[s.Key].TeamID
		if prev, dup := seen[teamID]; dup {
			return fmt.Errorf("%w: team %s drafted in %s and %s", ErrDuplicateTeam, teamID, prev, s.Key)
		}
		seen[teamID] = s.Key
	}
	return nil
}

// ValidateEligibility reports the first assignment whose position the slot does not allow.
// Every roster a draft session can produce passes.
func ValidateEligibility(r Roster) error {
	for _, s := range schema {
		p, ok := r[s.Key]
		if !ok {
			continue
		}
		if !s.Allows(p.Position) {
			return fmt.Errorf("%w: %s (%s) in %s", ErrIneligiblePosition, p.Name, p.Position, s.Key)
		}
	}
	for key := range r {
		if _, ok := SlotByKey(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSlot, key)
		}
	}
	return nil
}

// Players lists drafted players in slot order.
func (r Roster) Players() []player.Player {
	out := make([]player.Player, 0, len(r))
	for _, s := range schema {
		if p, ok := r[s.Key]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PlayerIDs lists drafted player ids in slot order.
func (r Roster) PlayerIDs() []string {
	out := make([]string, 0, len(r))
	for _, s := range schema {
		if p, ok := r[s.Key]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
