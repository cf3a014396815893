package playerstats

import (
	"context"
	"slices"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

// Filter narrows a stat listing. Zero values match everything.
type Filter struct {
	Round     round.Round
	PlayerIDs []string
}

func (f Filter) Matches(rec Record) bool {
	if f.Round != "" && rec.Round != f.Round {
		return false
	}
	if len(f.PlayerIDs) > 0 && !slices.Contains(f.PlayerIDs, rec.PlayerID) {
		return false
	}
	return true
}

type Repository interface {
	List(ctx context.Context, filter Filter) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, bool, error)
	// Upsert overwrites the stat line of an existing record; false when id is unknown.
	Upsert(ctx context.Context, id string, line Line) (bool, error)
	// SeedZero creates zeroed records for keys that have none and reports how many were created.
	SeedZero(ctx context.Context, keys []Key) (int, error)
}
