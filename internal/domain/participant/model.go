package participant

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

// Participant is one pool entrant. RoundScores holds the cached per-round totals
// written by recalculation; a missing round reads as zero.
type Participant struct {
	ID          string
	Name        string
	IsLocked    bool
	RoundScores map[round.Round]float64
	CreatedAt   time.Time
}

// Score returns the cached total for one round.
func (p Participant) Score(rd round.Round) float64 {
	return p.RoundScores[rd]
}

// Total sums the four cached round scores.
func (p Participant) Total() float64 {
	var total float64
	for _, rd := range round.All() {
		total += p.RoundScores[rd]
	}
	return total
}

func (p Participant) Clone() Participant {
	out := p
	out.RoundScores = make(map[round.Round]float64, len(p.RoundScores))
	for k, v := range p.RoundScores {
		out.RoundScores[k] = v
	}
	return out
}

// NormalizeName trims and validates a display name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("participant name is required")
	}
	if len(name) > 80 {
		return "", fmt.Errorf("participant name must be at most 80 characters")
	}
	return name, nil
}
