package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
)

// CatalogService serves the read-only reference data a draft needs.
type CatalogService struct {
	teamRepo   team.Repository
	playerRepo player.Repository
	statsRepo  playerstats.Repository
}

func NewCatalogService(teamRepo team.Repository, playerRepo player.Repository, statsRepo playerstats.Repository) *CatalogService {
	return &CatalogService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
	}
}

func (s *CatalogService) Slots() []roster.Slot {
	return roster.Slots()
}

func (s *CatalogService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListTeams")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, storeError("list teams", err)
	}
	return teams, nil
}

// ListPlayers returns the players matching filter. With a slot set, only players
// that slot allows are returned.
func (s *CatalogService) ListPlayers(ctx context.Context, filter player.Filter, slot roster.SlotKey) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListPlayers")
	defer span.End()

	if slot != "" {
		def, ok := roster.SlotByKey(slot)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidInput, roster.ErrUnknownSlot, slot)
		}
		filter.Positions = intersectPositions(filter.Positions, def.Allowed)
		if len(filter.Positions) == 0 {
			return []player.Player{}, nil
		}
	}
	for _, pos := range filter.Positions {
		if !pos.Valid() {
			return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, pos)
		}
	}

	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list players", err)
	}
	sortPlayers(players)
	return players, nil
}

// PlayerStat is a stat record with its computed score.
type PlayerStat struct {
	Record playerstats.Record
	Player player.Player
	Score  float64
}

// ListRoundStats returns every stat record for rd with scores, in stat-sheet order.
func (s *CatalogService) ListRoundStats(ctx context.Context, rd round.Round) ([]PlayerStat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CatalogService.ListRoundStats")
	defer span.End()

	if !rd.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, rd)
	}

	records, err := s.statsRepo.List(ctx, playerstats.Filter{Round: rd})
	if err != nil {
		return nil, storeError("list stats", err)
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("get players", err)
	}
	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	out := make([]PlayerStat, 0, len(records))
	for _, rec := range records {
		out = append(out, PlayerStat{Record: rec, Player: byID[rec.PlayerID], Score: scoring.Score(rec)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return playerLess(out[i].Player, out[j].Player)
	})
	return out, nil
}

func intersectPositions(requested, allowed []player.Position) []player.Position {
	if len(requested) == 0 {
		return append([]player.Position(nil), allowed...)
	}
	out := make([]player.Position, 0, len(requested))
	for _, pos := range requested {
		for _, candidate := range allowed {
			if pos == candidate {
				out = append(out, pos)
				break
			}
		}
	}
	return out
}

func sortPlayers(players []player.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return playerLess(players[i], players[j])
	})
}

// playerLess orders by position (QB first), then name.
func playerLess(a, b player.Player) bool {
	if a.Position.SortOrder() != b.Position.SortOrder() {
		return a.Position.SortOrder() < b.Position.SortOrder()
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
