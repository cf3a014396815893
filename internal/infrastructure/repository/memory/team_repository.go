package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	index := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		index[item.ID] = cloneTeam(item)
	}

	return &TeamRepository{teams: index}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, cloneTeam(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seed != out[j].Seed {
			return out[i].Seed < out[j].Seed
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	return cloneTeam(item), true, nil
}

func (r *TeamRepository) UpdateElimination(_ context.Context, teamID string, eliminatedIn *round.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return nil
	}
	item.EliminatedIn = cloneRound(eliminatedIn)
	r.teams[teamID] = item

	return nil
}

func cloneTeam(item team.Team) team.Team {
	item.EliminatedIn = cloneRound(item.EliminatedIn)
	return item
}

func cloneRound(rd *round.Round) *round.Round {
	if rd == nil {
		return nil
	}
	value := *rd
	return &value
}
