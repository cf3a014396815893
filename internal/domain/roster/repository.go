package roster

import "context"

// Repository persists submitted rosters. Rosters are immutable once written.
type Repository interface {
	CreateRows(ctx context.Context, participantID string, r Roster) error
	GetByParticipant(ctx context.Context, participantID string) (Roster, bool, error)
	// ListAll returns every roster keyed by participant id.
	ListAll(ctx context.Context) (map[string]Roster, error)
}
