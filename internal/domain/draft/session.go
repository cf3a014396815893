package draft

import (
	"fmt"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
)

// Session tracks an in-progress roster while a participant signs up. It holds no
// references to storage; a finished session is handed to the signup service.
type Session struct {
	current     roster.SlotKey
	assignments roster.Roster
}

func NewSession() *Session {
	return &Session{
		current:     roster.FirstSlot(),
		assignments: make(roster.Roster, roster.Size),
	}
}

func (s *Session) CurrentSlot() roster.SlotKey {
	return s.current
}

// Assignments returns a copy of the slots filled so far.
func (s *Session) Assignments() roster.Roster {
	return s.assignments.Clone()
}

// SelectSlot moves the cursor. Nothing else changes.
func (s *Session) SelectSlot(key roster.SlotKey) error {
	if _, ok := roster.SlotByKey(key); !ok {
		return fmt.Errorf("%w: %s", roster.ErrUnknownSlot, key)
	}
	s.current = key
	return nil
}

// PickPlayer assigns p to the current slot. A pick from a team already on the roster
// moves that team's pick here instead of failing. It returns the slot that was
// cleared by the move, if any.
func (s *Session) PickPlayer(p player.Player) (roster.SlotKey, error) {
	slot, ok := roster.SlotByKey(s.current)
	if !ok {
		return "", fmt.Errorf("%w: %s", roster.ErrUnknownSlot, s.current)
	}
	if !slot.Allows(p.Position) {
		return "", fmt.Errorf("%w: %s (%s) in %s", roster.ErrIneligiblePosition, p.Name, p.Position, slot.Key)
	}

	var displaced roster.SlotKey
	for key, existing := range s.assignments {
		if existing.TeamID == p.TeamID && key != s.current {
			delete(s.assignments, key)
			displaced = key
		}
	}
	s.assignments[s.current] = p

	return displaced, nil
}

// Clear empties one slot.
func (s *Session) Clear(key roster.SlotKey) error {
	if _, ok := roster.SlotByKey(key); !ok {
		return fmt.Errorf("%w: %s", roster.ErrUnknownSlot, key)
	}
	delete(s.assignments, key)
	return nil
}

// Roster returns the assignments as a roster ready for validation.
func (s *Session) Roster() roster.Roster {
	return s.assignments.Clone()
}

func (s *Session) Validate() error {
	return roster.Validate(s.assignments)
}

// Complete reports whether every slot is filled.
func (s *Session) Complete() bool {
	return len(s.assignments) == roster.Size
}

// Pick is one assignment in a snapshot.
type Pick struct {
	Slot     roster.SlotKey  `json:"slot" validate:"required"`
	PlayerID string          `json:"player_id" validate:"required"`
	Name     string          `json:"name"`
	Position player.Position `json:"position" validate:"required"`
	TeamID   string          `json:"team_id" validate:"required"`
}

// Snapshot is the serialisable form of a session, in slot order.
type Snapshot struct {
	CurrentSlot roster.SlotKey `json:"current_slot"`
	Picks       []Pick         `json:"picks" validate:"dive"`
}

func (s *Session) Snapshot() Snapshot {
	out := Snapshot{CurrentSlot: s.current, Picks: make([]Pick, 0, len(s.assignments))}
	for _, slot := range roster.Slots() {
		p, ok := s.assignments[slot.Key]
		if !ok {
			continue
		}
		out.Picks = append(out.Picks, Pick{
			Slot:     slot.Key,
			PlayerID: p.ID,
			Name:     p.Name,
			Position: p.Position,
			TeamID:   p.TeamID,
		})
	}
	return out
}

// Restore replays a snapshot through the same guards PickPlayer applies, so a
// restored session never holds an assignment a live session could not produce.
func Restore(snap Snapshot) (*Session, error) {
	s := NewSession()
	for _, pick := range snap.Picks {
		if err := s.SelectSlot(pick.Slot); err != nil {
			return nil, err
		}
		if _, err := s.PickPlayer(pick.Player()); err != nil {
			return nil, err
		}
	}

	s.current = roster.FirstSlot()
	if snap.CurrentSlot != "" {
		if err := s.SelectSlot(snap.CurrentSlot); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p Pick) Player() player.Player {
	return player.Player{ID: p.PlayerID, Name: p.Name, Position: p.Position, TeamID: p.TeamID}
}
