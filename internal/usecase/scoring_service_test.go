package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	participantmock "github.com/riskibarqy/playoff-pool/internal/mocks/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type recordingObserver struct {
	mu      sync.Mutex
	results []RecalculationResult
	changed int
}

func (o *recordingObserver) RecordRecalculation(_ context.Context, result RecalculationResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func (o *recordingObserver) LeaderboardChanged(context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changed++
}

func setLine(t *testing.T, env *testEnv, playerID string, rd round.Round, line playerstats.Line) {
	t.Helper()
	rec := findStat(t, env, playerID, rd)
	if _, err := env.stats.Upsert(t.Context(), rec.ID, line); err != nil {
		t.Fatalf("upsert stat: %v", err)
	}
}

func TestScoringService_RecalculateRound_IsIdempotent(t *testing.T) {
	observer := &recordingObserver{}
	env := newTestEnv(t, WithRecalcWorkers(2), WithRecalculationRecorder(observer), WithLeaderboardNotifier(observer))
	ctx := t.Context()

	first, err := env.signup.Submit(ctx, "Riley", seedSession(t, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := env.signup.Submit(ctx, "Jordan", seedSession(t, 4))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// kc-qb is Riley's QB1; Jordan drafted the kc kicker instead.
	setLine(t, env, "kc-qb", round.WildCard, playerstats.Line{CatchesSacks: 3, PassYards: 50, RushRecFGYards: 20, TDs: 1})

	result, err := env.scoring.RecalculateRound(ctx, adminCap, round.WildCard)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if result.ParticipantCount != 2 || result.UpdatedCount != 2 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	snapshot := func() map[string]float64 {
		items, _ := env.participants.List(ctx)
		out := make(map[string]float64, len(items))
		for _, item := range items {
			out[item.ID] = item.Score(round.WildCard)
		}
		return out
	}
	before := snapshot()
	if before[first.Participant.ID] != 13 {
		t.Fatalf("expected 13 for Riley, got %v", before[first.Participant.ID])
	}
	if before[second.Participant.ID] != 0 {
		t.Fatalf("expected 0 for Jordan, got %v", before[second.Participant.ID])
	}

	if _, err := env.scoring.RecalculateRound(ctx, adminCap, round.WildCard); err != nil {
		t.Fatalf("second recalculate: %v", err)
	}
	after := snapshot()
	for participantID, value := range before {
		if after[participantID] != value {
			t.Fatalf("participant %s changed from %v to %v on rerun", participantID, value, after[participantID])
		}
	}

	if len(observer.results) != 2 || observer.changed != 2 {
		t.Fatalf("expected observer notified twice, got results=%d changed=%d", len(observer.results), observer.changed)
	}
}

func TestScoringService_RecalculateRound_RequiresCapability(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.scoring.RecalculateRound(t.Context(), Capability{}, round.WildCard)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	_, err = env.scoring.RecalculateRound(t.Context(), adminCap, round.Round("preseason"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoringService_RecalculateRound_CollectsFailures(t *testing.T) {
	participantRepo := participantmock.NewRepository(t)
	rosters := memory.NewRosterRepository()
	stats := memory.NewPlayerStatsRepository(nil, playerstats.FormulaCombined)
	ctx := t.Context()

	items := []participant.Participant{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "no-roster"}}
	for _, item := range items[:3] {
		if err := rosters.CreateRows(ctx, item.ID, roster.Roster{roster.SlotQB1: {ID: "kc-qb", TeamID: "kc"}}); err != nil {
			t.Fatalf("create rows: %v", err)
		}
	}

	participantRepo.On("List", mock.Anything).Return(items, nil).Once()
	participantRepo.On("UpdateRoundScore", mock.Anything, "a", round.Divisional, 0.0).Return(nil).Once()
	participantRepo.On("UpdateRoundScore", mock.Anything, "b", round.Divisional, 0.0).Return(errors.New("deadlock detected")).Once()
	participantRepo.On("UpdateRoundScore", mock.Anything, "c", round.Divisional, 0.0).Return(nil).Once()

	service := NewScoringService(participantRepo, rosters, stats, memory.NewTeamRepository(memory.SeedTeams()), logging.NewNop(), WithRecalcWorkers(4))
	result, err := service.RecalculateRound(ctx, adminCap, round.Divisional)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if result.UpdatedCount != 2 || result.FailedCount != 2 {
		t.Fatalf("expected 2 updated and 2 failed, got %+v", result)
	}
	if result.Failures[0].ParticipantID != "b" || result.Failures[1].ParticipantID != "no-roster" {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if result.WorkerCount != 4 {
		t.Fatalf("expected 4 workers, got %d", result.WorkerCount)
	}
}

func TestScoringService_RecalculateRound_StoreReadFailure(t *testing.T) {
	participantRepo := participantmock.NewRepository(t)
	participantRepo.On("List", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	service := NewScoringService(participantRepo, memory.NewRosterRepository(), memory.NewPlayerStatsRepository(nil, ""), memory.NewTeamRepository(nil), logging.NewNop())
	_, err := service.RecalculateRound(t.Context(), adminCap, round.WildCard)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestScoringService_LeaderboardAndRanking(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	scores := []struct {
		id     string
		rounds map[round.Round]float64
	}{
		{"a", map[round.Round]float64{round.WildCard: 10.5}},
		{"b", map[round.Round]float64{round.WildCard: 20}},
		{"c", map[round.Round]float64{round.WildCard: 12, round.Divisional: 8}},
		{"d", map[round.Round]float64{round.Divisional: 5}},
	}
	for i, row := range scores {
		if err := env.participants.Create(ctx, participant.Participant{ID: row.id, Name: row.id, RoundScores: row.rounds, CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	board, err := env.scoring.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	wantIDs := []string{"b", "c", "a", "d"}
	wantRanks := []int{1, 1, 2, 3}
	for i := range wantIDs {
		if board[i].Participant.ID != wantIDs[i] || board[i].Rank != wantRanks[i] {
			t.Fatalf("position %d: got %s rank %d", i, board[i].Participant.ID, board[i].Rank)
		}
	}

	divisional, err := env.scoring.RoundRanking(ctx, round.Divisional)
	if err != nil {
		t.Fatalf("round ranking: %v", err)
	}
	if divisional[0].Participant.ID != "c" || divisional[0].Points != 8 || divisional[1].Participant.ID != "d" {
		t.Fatalf("unexpected divisional ranking: %+v", divisional)
	}
}

func TestScoringService_ParticipantBreakdown_SuppressesEliminatedTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	signed, err := env.signup.Submit(ctx, "Riley", seedSession(t, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	setLine(t, env, "kc-qb", round.WildCard, playerstats.Line{TDs: 1})
	setLine(t, env, "kc-qb", round.Conference, playerstats.Line{TDs: 2})
	setLine(t, env, "buf-qb", round.Conference, playerstats.Line{TDs: 1})

	wildcard := round.WildCard
	if _, err := env.admin.SetElimination(ctx, adminCap, "kc", &wildcard); err != nil {
		t.Fatalf("eliminate: %v", err)
	}
	if _, err := env.scoring.RecalculateAll(ctx, adminCap); err != nil {
		t.Fatalf("recalculate all: %v", err)
	}

	got, err := env.scoring.ParticipantBreakdown(ctx, signed.Participant.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if got.RoundTotals[round.WildCard] != 6 || got.RoundTotals[round.Conference] != 6 {
		t.Fatalf("unexpected round totals: %+v", got.RoundTotals)
	}
	if got.Total != 12 {
		t.Fatalf("expected display total 12, got %v", got.Total)
	}
	// Cached totals follow raw scores.
	if got.Cached != 24 {
		t.Fatalf("expected cached total 24, got %v", got.Cached)
	}

	qb1 := got.Slots[0]
	if qb1.Slot != roster.SlotQB1 || !qb1.Suppressed[round.Conference] || qb1.Suppressed[round.WildCard] {
		t.Fatalf("unexpected QB1 row: %+v", qb1)
	}
	if qb1.Points[round.Conference] != 12 {
		t.Fatalf("raw points must stay visible, got %v", qb1.Points[round.Conference])
	}

	if _, err := env.scoring.ParticipantBreakdown(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// pausingStatsRepository holds the first round listing after it has read the
// rows, until release is closed.
type pausingStatsRepository struct {
	*memory.PlayerStatsRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *pausingStatsRepository) List(ctx context.Context, filter playerstats.Filter) ([]playerstats.Record, error) {
	rows, err := r.PlayerStatsRepository.List(ctx, filter)
	if filter.Round == "" {
		return rows, err
	}
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return rows, err
}

func TestScoringService_RecalculateRound_EditDuringRunIsCounted(t *testing.T) {
	env := newTestEnv(t)
	ctx := t.Context()

	signed, err := env.signup.Submit(ctx, "Riley", seedSession(t, 0))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec := findStat(t, env, "kc-qb", round.WildCard)

	stats := &pausingStatsRepository{
		PlayerStatsRepository: env.stats,
		read:                  make(chan struct{}),
		release:               make(chan struct{}),
	}
	scorer := NewScoringService(env.participants, env.rosters, stats, env.teams, logging.NewNop())
	admin := NewAdminService(env.teams, env.players, env.participants, env.stats, scorer, logging.NewNop())

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := admin.UpdateStatLine(ctx, adminCap, rec.ID, playerstats.Line{TDs: 1})
		errs <- err
	}()
	<-stats.read

	// The first run has read TDs 1 and is paused; this edit lands after that read.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := admin.UpdateStatLine(ctx, adminCap, rec.ID, playerstats.Line{TDs: 2})
		errs <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for findStat(t, env, "kc-qb", round.WildCard).Line.TDs != 2 {
		if time.Now().After(deadline) {
			t.Fatal("second edit was not stored")
		}
		time.Sleep(time.Millisecond)
	}
	close(stats.release)

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update stat line: %v", err)
		}
	}

	item, _, _ := env.participants.GetByID(ctx, signed.Participant.ID)
	if item.Score(round.WildCard) != 12 {
		t.Fatalf("expected cached wildcard 12 after both edits, got %v", item.Score(round.WildCard))
	}
}
