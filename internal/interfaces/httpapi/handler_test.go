package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/playoff-pool/internal/domain/draft"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminUser     = "commissioner"
	testAdminPassword = "hunter2"
)

type testServer struct {
	router  http.Handler
	hub     *LeaderboardHub
	scoring *usecase.ScoringService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logging.NewNop()
	teams := memory.NewTeamRepository(memory.SeedTeams())
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	stats := memory.NewPlayerStatsRepository(&id.Sequence{Prefix: "stat-"}, playerstats.FormulaCombined)
	rosters := memory.NewRosterRepository()
	participants := memory.NewParticipantRepository(rosters)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth := usecase.NewAuthService(usecase.AuthConfig{
		Username:     testAdminUser,
		PasswordHash: string(hash),
		TokenSecret:  "0123456789abcdef0123456789abcdef",
		TokenTTL:     time.Hour,
	})

	hub := NewLeaderboardHub(logger, nil)
	scoring := usecase.NewScoringService(participants, rosters, stats, teams, logger, usecase.WithLeaderboardNotifier(hub))
	hub.SetSource(scoring)

	handler := NewHandler(
		usecase.NewCatalogService(teams, players, stats),
		usecase.NewSignupService(participants, rosters, stats, players, &id.Sequence{Prefix: "user-"}, logger),
		scoring,
		usecase.NewAdminService(teams, players, participants, stats, scoring, logger),
		usecase.NewStatSheetService(players, teams, stats, scoring, nil, logger),
		auth,
		logger,
	)

	return &testServer{
		router:  NewRouter(handler, logger, RouterOptions{Auth: auth, Hub: hub, SwaggerEnabled: true}),
		hub:     hub,
		scoring: scoring,
	}
}

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, body []byte) envelope[T] {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(body, &out); err != nil {
		t.Fatalf("unmarshal envelope: %v (body=%s)", err, body)
	}
	return out
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := sonic.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/admin/login", "", adminLoginRequest{Username: testAdminUser, Password: testAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope[usecase.AdminToken](t, rec.Body.Bytes())
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

// fullDraft picks one seeded player per slot, each from a different team.
func fullDraft() draft.Snapshot {
	teams := memory.SeedTeams()
	snap := draft.Snapshot{}
	for i, slot := range roster.Slots() {
		teamID := teams[i%len(teams)].ID
		pos := slot.Allowed[0]
		snap.Picks = append(snap.Picks, draft.Pick{
			Slot:     slot.Key,
			PlayerID: memory.SeedPlayerID(teamID, pos),
			Position: pos,
			TeamID:   teamID,
		})
	}
	return snap
}

func TestHandler_Healthz(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope[map[string]string](t, rec.Body.Bytes())
	require.Equal(t, "2.0", env.APIVersion)
	require.Equal(t, "ok", env.Data["status"])
}

func TestHandler_Catalog(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/v1/slots", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decodeEnvelope[[]slotDTO](t, rec.Body.Bytes()).Data
	require.Len(t, slots, len(roster.Slots()))
	require.Equal(t, "QB1", slots[0].Key)

	rec = srv.do(t, http.MethodGet, "/v1/teams", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teams := decodeEnvelope[[]teamDTO](t, rec.Body.Bytes()).Data
	require.Len(t, teams, len(memory.SeedTeams()))
	require.Nil(t, teams[0].EliminatedIn)

	rec = srv.do(t, http.MethodGet, "/v1/players?slot=K1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	kickers := decodeEnvelope[[]playerDTO](t, rec.Body.Bytes()).Data
	require.Len(t, kickers, len(memory.SeedTeams()))
	for _, p := range kickers {
		require.Equal(t, string(player.PositionK), p.Position)
	}

	rec = srv.do(t, http.MethodGet, "/v1/players?team=kc&position=qb,te", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeEnvelope[[]playerDTO](t, rec.Body.Bytes()).Data, 2)

	rec = srv.do(t, http.MethodGet, "/v1/players?position=LB", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/v1/stats/week9", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ValidateDraft(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/draft/validate", "", draftCheckRequest{Draft: fullDraft()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	check := decodeEnvelope[draftCheckDTO](t, rec.Body.Bytes()).Data
	require.True(t, check.Valid)
	require.Len(t, check.Roster, len(roster.Slots()))

	incomplete := fullDraft()
	incomplete.Picks = incomplete.Picks[:len(incomplete.Picks)-1]
	rec = srv.do(t, http.MethodPost, "/v1/draft/validate", "", draftCheckRequest{Draft: incomplete})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope[any](t, rec.Body.Bytes())
	require.NotNil(t, env.Error)
	require.Equal(t, "invalidRoster", env.Error.Errors[0].Reason)
	require.Equal(t, "DEF2", env.Error.Errors[0].Location)

	rec = srv.do(t, http.MethodPost, "/v1/draft/validate", "", `{"draft":{},"extra":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SignupAndLeaderboard(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/signup", "", signupRequest{Name: "  Dana  ", Draft: fullDraft()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeEnvelope[signupDTO](t, rec.Body.Bytes()).Data
	require.Equal(t, "Dana", created.Participant.Name)
	require.Len(t, created.Roster, len(roster.Slots()))
	require.Positive(t, created.SeededStats)

	rec = srv.do(t, http.MethodPost, "/v1/signup", "", signupRequest{Name: "", Draft: fullDraft()})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/v1/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeEnvelope[[]standingDTO](t, rec.Body.Bytes()).Data
	require.Len(t, board, 1)
	require.Equal(t, 1, board[0].Rank)
	require.Equal(t, created.Participant.ID, board[0].ParticipantID)

	rec = srv.do(t, http.MethodGet, "/v1/participants/"+created.Participant.ID+"/breakdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	breakdown := decodeEnvelope[breakdownDTO](t, rec.Body.Bytes()).Data
	require.Len(t, breakdown.Slots, len(roster.Slots()))

	rec = srv.do(t, http.MethodGet, "/v1/participants/missing/breakdown", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_AdminRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/v1/admin/recalculate", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/v1/admin/recalculate", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/v1/admin/login", "", adminLoginRequest{Username: testAdminUser, Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_AdminStatEditRecalculates(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/v1/signup", "", signupRequest{Name: "Dana", Draft: fullDraft()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	participantID := decodeEnvelope[signupDTO](t, rec.Body.Bytes()).Data.Participant.ID

	rec = srv.do(t, http.MethodGet, "/v1/stats/wildcard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statID string
	for _, s := range decodeEnvelope[[]playerStatDTO](t, rec.Body.Bytes()).Data {
		if s.PlayerID == memory.SeedPlayerID("kc", player.PositionQB) {
			statID = s.ID
		}
	}
	require.NotEmpty(t, statID)

	rec = srv.do(t, http.MethodPut, "/v1/admin/stats/"+statID, token, playerstats.Line{PassYards: 300, TDs: 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	update := decodeEnvelope[statUpdateDTO](t, rec.Body.Bytes()).Data
	require.Positive(t, update.Stat.Score)
	require.Equal(t, 1, update.Recalculation.UpdatedCount)

	rec = srv.do(t, http.MethodGet, "/v1/rounds/wildcard/ranking", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ranking := decodeEnvelope[[]standingDTO](t, rec.Body.Bytes()).Data
	require.Len(t, ranking, 1)
	require.InDelta(t, update.Stat.Score, ranking[0].Points, 1e-9)

	rec = srv.do(t, http.MethodPut, "/v1/admin/stats/"+statID, token, playerstats.Line{TDs: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/v1/admin/participants/"+participantID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/v1/admin/participants/"+participantID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_AdminLocksAndElimination(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/v1/signup", "", signupRequest{Name: "Dana", Draft: fullDraft()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	participantID := decodeEnvelope[signupDTO](t, rec.Body.Bytes()).Data.Participant.ID

	rec = srv.do(t, http.MethodPut, "/v1/admin/participants/"+participantID+"/lock", token, `{"locked":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPut, "/v1/admin/participants/"+participantID+"/lock", token, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPut, "/v1/admin/participants/lock", token, `{"locked":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, decodeEnvelope[lockAllDTO](t, rec.Body.Bytes()).Data.Updated)

	rec = srv.do(t, http.MethodPut, "/v1/admin/teams/kc/elimination", token, `{"eliminated_in":"Divisional"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	eliminated := decodeEnvelope[teamDTO](t, rec.Body.Bytes()).Data
	require.NotNil(t, eliminated.EliminatedIn)
	require.Equal(t, "divisional", *eliminated.EliminatedIn)

	rec = srv.do(t, http.MethodPut, "/v1/admin/teams/kc/elimination", token, `{"eliminated_in":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, decodeEnvelope[teamDTO](t, rec.Body.Bytes()).Data.EliminatedIn)

	rec = srv.do(t, http.MethodPut, "/v1/admin/teams/nope/elimination", token, `{"eliminated_in":"wildcard"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_StatSheetRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/v1/admin/stats/seed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Positive(t, decodeEnvelope[seedStatsDTO](t, rec.Body.Bytes()).Data.Created)

	rec = srv.do(t, http.MethodGet, "/v1/admin/rounds/conference/sheet", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	require.Equal(t, "84", rec.Header().Get("X-Sheet-Rows"))
	sheet := rec.Body.String()

	rec = srv.do(t, http.MethodPost, "/v1/admin/rounds/conference/sheet", token, sheet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	imported := decodeEnvelope[usecase.ImportResult](t, rec.Body.Bytes()).Data
	require.Equal(t, 84, imported.Updated)
	require.Empty(t, imported.Skipped)
}

func TestHandler_OpenAPI(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/openapi.yaml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Playoff Pool API")

	rec = srv.do(t, http.MethodGet, "/docs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<title>Playoff Pool API Docs</title>")
}
