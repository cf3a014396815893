package participant

import (
	"context"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

type Repository interface {
	Create(ctx context.Context, item Participant) error
	// Delete removes the participant and its roster rows.
	Delete(ctx context.Context, id string) (bool, error)
	// List returns participants in creation order.
	List(ctx context.Context) ([]Participant, error)
	GetByID(ctx context.Context, id string) (Participant, bool, error)
	UpdateRoundScore(ctx context.Context, id string, rd round.Round, value float64) error
	SetLock(ctx context.Context, id string, locked bool) (bool, error)
	SetLockAll(ctx context.Context, locked bool) (int, error)
}
