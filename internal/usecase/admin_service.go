package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// AdminService holds the privileged operations. Every method takes a Capability.
type AdminService struct {
	teamRepo        team.Repository
	playerRepo      player.Repository
	participantRepo participant.Repository
	statsRepo       playerstats.Repository
	scorer          *ScoringService
	logger          *logging.Logger
}

func NewAdminService(
	teamRepo team.Repository,
	playerRepo player.Repository,
	participantRepo participant.Repository,
	statsRepo playerstats.Repository,
	scorer *ScoringService,
	logger *logging.Logger,
) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AdminService{
		teamRepo:        teamRepo,
		playerRepo:      playerRepo,
		participantRepo: participantRepo,
		statsRepo:       statsRepo,
		scorer:          scorer,
		logger:          logger,
	}
}

// SetElimination marks the round a team was knocked out in; nil restores it.
// Cached totals are not touched; elimination only changes what views display.
func (s *AdminService) SetElimination(ctx context.Context, capability Capability, teamID string, eliminatedIn *round.Round) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetElimination")
	defer span.End()

	if err := capability.require("set elimination"); err != nil {
		return team.Team{}, err
	}
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if eliminatedIn != nil && !eliminatedIn.Valid() {
		return team.Team{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, *eliminatedIn)
	}

	item, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, storeError("get team", err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	if err := s.teamRepo.UpdateElimination(ctx, teamID, eliminatedIn); err != nil {
		return team.Team{}, storeError("update elimination", err)
	}
	item.EliminatedIn = eliminatedIn

	if eliminatedIn == nil {
		s.logger.InfoContext(ctx, "team restored", "team_id", teamID, "by", capability.Subject)
	} else {
		s.logger.InfoContext(ctx, "team eliminated", "team_id", teamID, "round", string(*eliminatedIn), "by", capability.Subject)
	}
	s.scorer.notifyChanged(ctx)
	return item, nil
}

func (s *AdminService) SetLock(ctx context.Context, capability Capability, participantID string, locked bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetLock")
	defer span.End()

	if err := capability.require("set lock"); err != nil {
		return err
	}
	found, err := s.participantRepo.SetLock(ctx, participantID, locked)
	if err != nil {
		return storeError("set lock", err)
	}
	if !found {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}
	return nil
}

// SetLockAll sets the lock flag on every participant and returns how many rows changed.
func (s *AdminService) SetLockAll(ctx context.Context, capability Capability, locked bool) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetLockAll")
	defer span.End()

	if err := capability.require("set lock on all participants"); err != nil {
		return 0, err
	}
	count, err := s.participantRepo.SetLockAll(ctx, locked)
	if err != nil {
		return 0, storeError("set lock all", err)
	}
	s.logger.InfoContext(ctx, "participants lock updated", "locked", locked, "count", count)
	return count, nil
}

// DeleteParticipant removes a participant and its roster. This is the only way to
// change a submitted roster.
func (s *AdminService) DeleteParticipant(ctx context.Context, capability Capability, participantID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.DeleteParticipant")
	defer span.End()

	if err := capability.require("delete participant"); err != nil {
		return err
	}
	found, err := s.participantRepo.Delete(ctx, participantID)
	if err != nil {
		return storeError("delete participant", err)
	}
	if !found {
		return fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}

	s.logger.InfoContext(ctx, "participant deleted", "participant_id", participantID, "by", capability.Subject)
	s.scorer.notifyChanged(ctx)
	return nil
}

// StatUpdateResult is the stored record after an edit and the recalculation it triggered.
type StatUpdateResult struct {
	Record        playerstats.Record
	Score         float64
	Recalculation RecalculationResult
}

// UpdateStatLine overwrites one record's stat line and recalculates its round.
func (s *AdminService) UpdateStatLine(ctx context.Context, capability Capability, recordID string, line playerstats.Line) (StatUpdateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.UpdateStatLine")
	defer span.End()

	if err := capability.require("update stat line"); err != nil {
		return StatUpdateResult{}, err
	}
	if err := validateLine(line); err != nil {
		return StatUpdateResult{}, err
	}

	rec, found, err := s.statsRepo.GetByID(ctx, recordID)
	if err != nil {
		return StatUpdateResult{}, storeError("get stat record", err)
	}
	if !found {
		return StatUpdateResult{}, fmt.Errorf("%w: stat record=%s", ErrNotFound, recordID)
	}

	found, err = s.statsRepo.Upsert(ctx, recordID, line)
	if err != nil {
		return StatUpdateResult{}, storeError("upsert stat record", err)
	}
	if !found {
		return StatUpdateResult{}, fmt.Errorf("%w: stat record=%s", ErrNotFound, recordID)
	}
	rec.Line = line

	result := StatUpdateResult{Record: rec, Score: scoring.Score(rec)}
	if s.scorer != nil {
		recalc, err := s.scorer.RecalculateRound(ctx, capability, rec.Round)
		if err != nil {
			return result, fmt.Errorf("recalculate after stat update: %w", err)
		}
		result.Recalculation = recalc
	}
	return result, nil
}

// SeedStats creates zero stat rows for every player and round that has none.
func (s *AdminService) SeedStats(ctx context.Context, capability Capability) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SeedStats")
	defer span.End()

	if err := capability.require("seed stats"); err != nil {
		return 0, err
	}
	players, err := s.playerRepo.List(ctx, player.Filter{})
	if err != nil {
		return 0, storeError("list players", err)
	}
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}

	created, err := s.statsRepo.SeedZero(ctx, playerstats.KeysFor(ids))
	if err != nil {
		return 0, storeError("seed stat rows", err)
	}
	s.logger.InfoContext(ctx, "stat rows seeded", "created", created, "players", len(ids))
	return created, nil
}

// validateLine rejects non-finite values in any field and negative counters.
// Yardage may be negative (sacks, lost yards).
func validateLine(line playerstats.Line) error {
	yards := map[string]float64{
		"pass_yards":        line.PassYards,
		"rush_rec_fg_yards": line.RushRecFGYards,
		"return_yards":      line.ReturnYards,
		"rush_rec_yards":    line.RushRecYards,
		"fg_yards":          line.FGYards,
	}
	counters := map[string]float64{
		"catches_sacks":      line.CatchesSacks,
		"tds":                line.TDs,
		"turnovers":          line.Turnovers,
		"two_pt":             line.TwoPt,
		"def_turnovers_misc": line.DefTurnoversMisc,
		"catches":            line.Catches,
		"misc_td":            line.MiscTD,
		"sacks":              line.Sacks,
		"def_turnovers":      line.DefTurnovers,
		"safety":             line.Safety,
	}
	for name, value := range yards {
		if !isFinite(value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, name)
		}
	}
	for name, value := range counters {
		if !isFinite(value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, name)
		}
		if value < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalidInput, name)
		}
	}
	if line.PointsAllowed != nil && *line.PointsAllowed < 0 {
		return fmt.Errorf("%w: points_allowed must be >= 0", ErrInvalidInput)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
