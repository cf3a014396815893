package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]participant.Participant
	rosters      *RosterRepository
}

// NewParticipantRepository cascades deletes into rosters when it is non-nil.
func NewParticipantRepository(rosters *RosterRepository) *ParticipantRepository {
	return &ParticipantRepository{
		participants: make(map[string]participant.Participant),
		rosters:      rosters,
	}
}

func (r *ParticipantRepository) Create(_ context.Context, item participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.participants[item.ID]; exists {
		return fmt.Errorf("participant %s already exists", item.ID)
	}
	r.participants[item.ID] = item.Clone()

	return nil
}

func (r *ParticipantRepository) Delete(_ context.Context, participantID string) (bool, error) {
	r.mu.Lock()
	_, ok := r.participants[participantID]
	delete(r.participants, participantID)
	r.mu.Unlock()

	if ok && r.rosters != nil {
		r.rosters.deleteParticipant(participantID)
	}
	return ok, nil
}

func (r *ParticipantRepository) List(_ context.Context) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0, len(r.participants))
	for _, item := range r.participants {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *ParticipantRepository) GetByID(_ context.Context, participantID string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.participants[participantID]
	if !ok {
		return participant.Participant{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ParticipantRepository) UpdateRoundScore(_ context.Context, participantID string, rd round.Round, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.participants[participantID]
	if !ok {
		return fmt.Errorf("participant %s not found", participantID)
	}
	if item.RoundScores == nil {
		item.RoundScores = make(map[round.Round]float64, round.Count)
	}
	item.RoundScores[rd] = value
	r.participants[participantID] = item

	return nil
}

func (r *ParticipantRepository) SetLock(_ context.Context, participantID string, locked bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.participants[participantID]
	if !ok {
		return false, nil
	}
	item.IsLocked = locked
	r.participants[participantID] = item

	return true, nil
}

func (r *ParticipantRepository) SetLockAll(_ context.Context, locked bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for participantID, item := range r.participants {
		if item.IsLocked == locked {
			continue
		}
		item.IsLocked = locked
		r.participants[participantID] = item
		changed++
	}

	return changed, nil
}
