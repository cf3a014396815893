package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	rosters map[string]roster.Roster
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{rosters: make(map[string]roster.Roster)}
}

func (r *RosterRepository) CreateRows(_ context.Context, participantID string, picks roster.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rosters[participantID]; exists {
		return fmt.Errorf("roster for participant %s already exists", participantID)
	}
	r.rosters[participantID] = picks.Clone()

	return nil
}

func (r *RosterRepository) GetByParticipant(_ context.Context, participantID string) (roster.Roster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	picks, ok := r.rosters[participantID]
	if !ok {
		return nil, false, nil
	}
	return picks.Clone(), true, nil
}

func (r *RosterRepository) ListAll(_ context.Context) (map[string]roster.Roster, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]roster.Roster, len(r.rosters))
	for participantID, picks := range r.rosters {
		out[participantID] = picks.Clone()
	}

	return out, nil
}

func (r *RosterRepository) deleteParticipant(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rosters, participantID)
}
