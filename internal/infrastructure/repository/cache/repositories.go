package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	basecache "github.com/riskibarqy/playoff-pool/internal/platform/cache"
)

const teamKeyPrefix = "team:"

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, teamKeyPrefix+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneTeams(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return cloneTeams(items), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := teamKeyPrefix + "id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: cloneTeam(item), exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cloneTeam(cached.value), cached.exists, nil
}

// UpdateElimination writes through and drops every cached team entry.
func (r *TeamRepository) UpdateElimination(ctx context.Context, teamID string, eliminatedIn *round.Round) error {
	if err := r.next.UpdateElimination(ctx, teamID, eliminatedIn); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, teamKeyPrefix)
	return nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

func cloneTeam(item team.Team) team.Team {
	if item.EliminatedIn != nil {
		rd := *item.EliminatedIn
		item.EliminatedIn = &rd
	}
	return item
}

func cloneTeams(items []team.Team) []team.Team {
	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		out = append(out, cloneTeam(item))
	}
	return out
}

// PlayerRepository caches player reads. Players are static for a season, so
// entries only expire by TTL.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context, filter player.Filter) ([]player.Player, error) {
	key := "player:list:" + filterKey(filter)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}
	ids := append([]string(nil), playerIDs...)
	sort.Strings(ids)

	key := "player:ids:" + strings.Join(ids, ",")
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

func filterKey(filter player.Filter) string {
	positions := make([]string, 0, len(filter.Positions))
	for _, pos := range filter.Positions {
		positions = append(positions, string(pos))
	}
	sort.Strings(positions)
	ids := append([]string(nil), filter.IDs...)
	sort.Strings(ids)

	return filter.TeamID + "|" + strings.Join(positions, ",") + "|" + strings.Join(ids, ",")
}
