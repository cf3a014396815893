package team

import (
	"fmt"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

// Team is one playoff team. EliminatedIn is nil while the team is still alive.
type Team struct {
	ID           string
	Name         string
	Short        string
	Seed         int
	EliminatedIn *round.Round
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.EliminatedIn != nil && !t.EliminatedIn.Valid() {
		return fmt.Errorf("team %s has invalid elimination round %q", t.ID, *t.EliminatedIn)
	}

	return nil
}

// Eliminated reports whether the team's run has ended.
func (t Team) Eliminated() bool {
	return t.EliminatedIn != nil
}

// ScoresIn reports whether the team's players count in rd. A team eliminated in
// the divisional round still scores for divisional but not for conference.
func (t Team) ScoresIn(rd round.Round) bool {
	if t.EliminatedIn == nil {
		return true
	}
	return !rd.After(*t.EliminatedIn)
}
