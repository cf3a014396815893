package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// RecalculationRecorder receives the outcome of every recalculation run.
type RecalculationRecorder interface {
	RecordRecalculation(ctx context.Context, result RecalculationResult)
}

// LeaderboardNotifier is told when cached totals may have changed.
type LeaderboardNotifier interface {
	LeaderboardChanged(ctx context.Context)
}

type ScoringService struct {
	participantRepo participant.Repository
	rosterRepo      roster.Repository
	statsRepo       playerstats.Repository
	teamRepo        team.Repository
	logger          *logging.Logger
	maxWorkers      int
	recorder        RecalculationRecorder
	notifier        LeaderboardNotifier
	// roundLocks serialises recalculation per round, indexed by round.Index.
	roundLocks      [round.Count]sync.Mutex
	now             func() time.Time
}

const defaultRecalcWorkers = 8

type ScoringOption func(*ScoringService)

// WithRecalcWorkers caps the recalculation worker pool.
func WithRecalcWorkers(n int) ScoringOption {
	return func(s *ScoringService) {
		if n > 0 {
			s.maxWorkers = n
		}
	}
}

func WithRecalculationRecorder(r RecalculationRecorder) ScoringOption {
	return func(s *ScoringService) { s.recorder = r }
}

func WithLeaderboardNotifier(n LeaderboardNotifier) ScoringOption {
	return func(s *ScoringService) { s.notifier = n }
}

func NewScoringService(
	participantRepo participant.Repository,
	rosterRepo roster.Repository,
	statsRepo playerstats.Repository,
	teamRepo team.Repository,
	logger *logging.Logger,
	opts ...ScoringOption,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	s := &ScoringService{
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		statsRepo:       statsRepo,
		teamRepo:        teamRepo,
		logger:          logger,
		maxWorkers:      defaultRecalcWorkers,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RecalculationResult struct {
	Round            round.Round            `json:"round"`
	ParticipantCount int                    `json:"participant_count"`
	UpdatedCount     int                    `json:"updated_count"`
	FailedCount      int                    `json:"failed_count"`
	WorkerCount      int                    `json:"worker_count"`
	DurationMs       int64                  `json:"duration_ms"`
	Failures         []RecalculationFailure `json:"failures"`
}

type RecalculationFailure struct {
	ParticipantID string `json:"participant_id"`
	Message       string `json:"message"`
}

// RecalculateRound recomputes and stores every participant's total for rd. A failed
// participant is recorded in the result and does not stop the others. Running it
// twice without stat changes writes the same values.
func (s *ScoringService) RecalculateRound(ctx context.Context, capability Capability, rd round.Round) (RecalculationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecalculateRound")
	defer span.End()

	if err := capability.require("recalculate round"); err != nil {
		return RecalculationResult{}, err
	}
	if !rd.Valid() {
		return RecalculationResult{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, rd)
	}

	// Runs for one round never overlap. Each caller reads the stats itself after
	// taking the lock, so an edit saved before the call is in its totals.
	lock := &s.roundLocks[rd.Index()]
	lock.Lock()
	result, err := s.recalculateRound(ctx, rd)
	lock.Unlock()
	if err != nil {
		return RecalculationResult{}, err
	}

	s.notifyChanged(ctx)
	return result, nil
}

// RecalculateAll runs RecalculateRound for each round in order and stops at the
// first round whose inputs could not be read.
func (s *ScoringService) RecalculateAll(ctx context.Context, capability Capability) ([]RecalculationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecalculateAll")
	defer span.End()

	out := make([]RecalculationResult, 0, round.Count)
	for _, rd := range round.All() {
		result, err := s.RecalculateRound(ctx, capability, rd)
		if err != nil {
			return out, err
		}
		out = append(out, result)
	}
	return out, nil
}

type recalcInputs struct {
	participants []participant.Participant
	rosters      map[string]roster.Roster
	stats        scoring.StatIndex
}

func (s *ScoringService) recalculateRound(ctx context.Context, rd round.Round) (RecalculationResult, error) {
	start := s.now()

	inputs, err := s.loadRecalcInputs(ctx, rd)
	if err != nil {
		return RecalculationResult{}, err
	}

	workerCount := normalizeWorkerCount(s.maxWorkers, len(inputs.participants))
	result := RecalculationResult{
		Round:            rd,
		ParticipantCount: len(inputs.participants),
		WorkerCount:      workerCount,
		Failures:         []RecalculationFailure{},
	}
	if len(inputs.participants) == 0 {
		s.record(ctx, &result, start)
		return result, nil
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return RecalculationResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	failures := make(chan RecalculationFailure, len(inputs.participants))
	var updated atomic.Int32
	var wg sync.WaitGroup
	for _, item := range inputs.participants {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			picks, ok := inputs.rosters[item.ID]
			if !ok {
				failures <- RecalculationFailure{ParticipantID: item.ID, Message: "roster not found"}
				return
			}
			total := scoring.WeekTotal(picks, inputs.stats, rd)
			if err := s.participantRepo.UpdateRoundScore(ctx, item.ID, rd, total); err != nil {
				failures <- RecalculationFailure{ParticipantID: item.ID, Message: storeError("update round score", err).Error()}
				return
			}
			updated.Add(1)
		}); err != nil {
			wg.Done()
			return RecalculationResult{}, fmt.Errorf("submit recalculation to worker pool: %w", err)
		}
	}

	wg.Wait()
	close(failures)
	for row := range failures {
		result.Failures = append(result.Failures, row)
	}
	sort.SliceStable(result.Failures, func(i, j int) bool {
		return result.Failures[i].ParticipantID < result.Failures[j].ParticipantID
	})

	result.UpdatedCount = int(updated.Load())
	result.FailedCount = len(result.Failures)
	s.record(ctx, &result, start)

	if result.FailedCount > 0 {
		s.logger.WarnContext(ctx, "round recalculation finished with failures",
			"round", string(rd),
			"failed", result.FailedCount,
			"updated", result.UpdatedCount,
		)
	} else {
		s.logger.InfoContext(ctx, "round recalculated", "round", string(rd), "updated", result.UpdatedCount)
	}
	return result, nil
}

func (s *ScoringService) notifyChanged(ctx context.Context) {
	if s == nil || s.notifier == nil {
		return
	}
	s.notifier.LeaderboardChanged(ctx)
}

func (s *ScoringService) record(ctx context.Context, result *RecalculationResult, start time.Time) {
	result.DurationMs = s.now().Sub(start).Milliseconds()
	if s.recorder != nil {
		s.recorder.RecordRecalculation(ctx, *result)
	}
}

// loadRecalcInputs reads participants, rosters and the round's stats concurrently.
func (s *ScoringService) loadRecalcInputs(ctx context.Context, rd round.Round) (recalcInputs, error) {
	var inputs recalcInputs
	var records []playerstats.Record

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		items, err := s.participantRepo.List(ctx)
		if err != nil {
			return storeError("list participants", err)
		}
		inputs.participants = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.rosterRepo.ListAll(ctx)
		if err != nil {
			return storeError("list rosters", err)
		}
		inputs.rosters = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.statsRepo.List(ctx, playerstats.Filter{Round: rd})
		if err != nil {
			return storeError("list stats", err)
		}
		records = items
		return nil
	})
	if err := p.Wait(); err != nil {
		return recalcInputs{}, err
	}

	inputs.stats = scoring.NewStatIndex(records)
	return inputs, nil
}

// Leaderboard ranks participants by cached total.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]scoring.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	items, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, storeError("list participants", err)
	}
	return scoring.Ranked(scoring.Leaderboard(items), participant.Participant.Total), nil
}

// RoundRanking ranks participants by their cached score for rd.
func (s *ScoringService) RoundRanking(ctx context.Context, rd round.Round) ([]scoring.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RoundRanking")
	defer span.End()

	if !rd.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, rd)
	}
	items, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, storeError("list participants", err)
	}
	return scoring.Ranked(scoring.RankingByRound(items, rd), func(p participant.Participant) float64 {
		return p.Score(rd)
	}), nil
}

// SlotScore is one rostered player's points for every round.
type SlotScore struct {
	Slot       roster.SlotKey
	Player     player.Player
	Points     map[round.Round]float64
	Suppressed map[round.Round]bool
}

// Breakdown is the live view of one participant. Totals recompute from stats;
// Cached is what recalculation last stored.
type Breakdown struct {
	Participant participant.Participant
	Slots       []SlotScore
	RoundTotals map[round.Round]float64
	Total       float64
	Cached      float64
}

// ParticipantBreakdown scores a participant's roster live. Points of players whose
// team was eliminated before a round are shown as suppressed and left out of the
// round totals; the stat records themselves are untouched.
func (s *ScoringService) ParticipantBreakdown(ctx context.Context, participantID string) (Breakdown, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ParticipantBreakdown")
	defer span.End()

	var (
		item     participant.Participant
		found    bool
		picks    roster.Roster
		hasPicks bool
		teams    []team.Team
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		item, found, err = s.participantRepo.GetByID(ctx, participantID)
		if err != nil {
			return storeError("get participant", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		picks, hasPicks, err = s.rosterRepo.GetByParticipant(ctx, participantID)
		if err != nil {
			return storeError("get roster", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		teams, err = s.teamRepo.List(ctx)
		if err != nil {
			return storeError("list teams", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return Breakdown{}, err
	}
	if !found {
		return Breakdown{}, fmt.Errorf("%w: participant=%s", ErrNotFound, participantID)
	}
	if !hasPicks {
		return Breakdown{}, fmt.Errorf("%w: roster for participant=%s", ErrNotFound, participantID)
	}

	records, err := s.statsRepo.List(ctx, playerstats.Filter{PlayerIDs: picks.PlayerIDs()})
	if err != nil {
		return Breakdown{}, storeError("list stats", err)
	}
	stats := scoring.NewStatIndex(records)

	teamByID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}
	lookup := func(teamID string) (team.Team, bool) {
		t, ok := teamByID[teamID]
		return t, ok
	}

	out := Breakdown{
		Participant: item,
		Slots:       make([]SlotScore, 0, len(picks)),
		RoundTotals: make(map[round.Round]float64, round.Count),
		Cached:      item.Total(),
	}
	for _, slot := range roster.Slots() {
		pick, ok := picks[slot.Key]
		if !ok {
			continue
		}
		row := SlotScore{
			Slot:       slot.Key,
			Player:     pick,
			Points:     make(map[round.Round]float64, round.Count),
			Suppressed: make(map[round.Round]bool, round.Count),
		}
		t, known := teamByID[pick.TeamID]
		for _, rd := range round.All() {
			row.Points[rd] = stats.PlayerScore(pick.ID, rd)
			row.Suppressed[rd] = known && scoring.IsSuppressed(t, rd)
		}
		out.Slots = append(out.Slots, row)
	}
	for _, rd := range round.All() {
		total := scoring.WeekTotalWithElimination(picks, stats, rd, lookup)
		out.RoundTotals[rd] = total
		out.Total += total
	}
	return out, nil
}

func normalizeWorkerCount(value, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
