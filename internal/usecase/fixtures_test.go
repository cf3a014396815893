package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/draft"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type testEnv struct {
	teams        *memory.TeamRepository
	players      *memory.PlayerRepository
	stats        *memory.PlayerStatsRepository
	rosters      *memory.RosterRepository
	participants *memory.ParticipantRepository

	signup  *SignupService
	scoring *ScoringService
	admin   *AdminService
	sheets  *StatSheetService
	catalog *CatalogService
}

func newTestEnv(t *testing.T, opts ...ScoringOption) *testEnv {
	t.Helper()

	logger := logging.NewNop()
	env := &testEnv{
		teams:   memory.NewTeamRepository(memory.SeedTeams()),
		players: memory.NewPlayerRepository(memory.SeedPlayers()),
		stats:   memory.NewPlayerStatsRepository(&id.Sequence{Prefix: "stat-"}, playerstats.FormulaCombined),
		rosters: memory.NewRosterRepository(),
	}
	env.participants = memory.NewParticipantRepository(env.rosters)

	env.signup = NewSignupService(env.participants, env.rosters, env.stats, env.players, &id.Sequence{Prefix: "user-"}, logger)
	tick := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	env.signup.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	env.scoring = NewScoringService(env.participants, env.rosters, env.stats, env.teams, logger, opts...)
	env.admin = NewAdminService(env.teams, env.players, env.participants, env.stats, env.scoring, logger)
	env.sheets = NewStatSheetService(env.players, env.teams, env.stats, env.scoring, nil, logger)
	env.catalog = NewCatalogService(env.teams, env.players, env.stats)
	return env
}

// seedSession drafts one player from each of the first fourteen seeded teams,
// rotating the team order by offset.
func seedSession(t *testing.T, offset int) *draft.Session {
	t.Helper()

	teams := memory.SeedTeams()
	s := draft.NewSession()
	for i, slot := range roster.Slots() {
		teamID := teams[(i+offset)%len(teams)].ID
		if err := s.SelectSlot(slot.Key); err != nil {
			t.Fatalf("select slot: %v", err)
		}
		p := seededPlayer(t, teamID, slot.Allowed[0])
		if _, err := s.PickPlayer(p); err != nil {
			t.Fatalf("pick %s: %v", p.ID, err)
		}
	}
	return s
}

func seededPlayer(t *testing.T, teamID string, pos player.Position) player.Player {
	t.Helper()

	want := memory.SeedPlayerID(teamID, pos)
	for _, p := range memory.SeedPlayers() {
		if p.ID == want {
			return p
		}
	}
	t.Fatalf("seed player %s not found", want)
	return player.Player{}
}

func findStat(t *testing.T, env *testEnv, playerID string, rd round.Round) playerstats.Record {
	t.Helper()

	rows, err := env.stats.List(t.Context(), playerstats.Filter{PlayerIDs: []string{playerID}})
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	for _, rec := range rows {
		if rec.Round == rd {
			return rec
		}
	}
	t.Fatalf("stat row for %s/%s not found", playerID, rd)
	return playerstats.Record{}
}

var adminCap = AdminCapability("admin")
