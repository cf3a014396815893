package player

import (
	"context"
	"slices"
)

// Filter narrows List; zero values mean "no constraint".
type Filter struct {
	TeamID    string
	Positions []Position
	IDs       []string
}

// Matches applies the filter in memory.
func (f Filter) Matches(p Player) bool {
	if f.TeamID != "" && p.TeamID != f.TeamID {
		return false
	}
	if len(f.Positions) > 0 && !slices.Contains(f.Positions, p.Position) {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, p.ID) {
		return false
	}
	return true
}

// Repository describes player persistence needs from use cases.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Player, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
}
