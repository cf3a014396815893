package team

import (
	"context"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

// Repository describes team persistence needs from use cases.
type Repository interface {
	// List returns all playoff teams ordered by seed ascending.
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	// UpdateElimination sets or clears (nil) the round that ended the team's run.
	UpdateElimination(ctx context.Context, teamID string, eliminatedIn *round.Round) error
}
