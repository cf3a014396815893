package scoring

import (
	"fmt"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
)

func testRoster() roster.Roster {
	r := make(roster.Roster, roster.Size)
	for i, s := range roster.Slots() {
		r[s.Key] = player.Player{
			ID:       fmt.Sprintf("p%d", i+1),
			Position: s.Allowed[0],
			TeamID:   fmt.Sprintf("t%d", i+1),
		}
	}
	return r
}

func tdLine(tds float64) playerstats.Line {
	return playerstats.Line{TDs: tds}
}

func TestWeekTotal(t *testing.T) {
	r := testRoster()

	if got := WeekTotal(r, nil, round.WildCard); got != 0 {
		t.Fatalf("expected 0 without stats, got %v", got)
	}

	stats := NewStatIndex([]playerstats.Record{
		{PlayerID: "p1", Round: round.WildCard, Line: tdLine(1)},
		{PlayerID: "p2", Round: round.WildCard, Line: tdLine(2)},
		{PlayerID: "p2", Round: round.Divisional, Line: tdLine(5)},
		{PlayerID: "outsider", Round: round.WildCard, Line: tdLine(9)},
	})

	if got := WeekTotal(r, stats, round.WildCard); got != 18 {
		t.Fatalf("expected 18, got %v", got)
	}
	if got := WeekTotal(r, stats, round.Divisional); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
	if got := ParticipantTotal(r, stats); got != 48 {
		t.Fatalf("expected 48, got %v", got)
	}
}

func TestWeekTotalWithElimination(t *testing.T) {
	r := testRoster()
	divisional := round.Divisional
	teams := map[string]team.Team{
		"t1": {ID: "t1", EliminatedIn: &divisional},
	}
	lookup := func(id string) (team.Team, bool) {
		item, ok := teams[id]
		return item, ok
	}

	stats := NewStatIndex([]playerstats.Record{
		{PlayerID: "p1", Round: round.Divisional, Line: tdLine(1)},
		{PlayerID: "p1", Round: round.Conference, Line: tdLine(1)},
		{PlayerID: "p2", Round: round.Conference, Line: tdLine(1)},
	})

	if got := WeekTotalWithElimination(r, stats, round.Divisional, lookup); got != 6 {
		t.Fatalf("eliminated team still scores in its final round, expected 6 got %v", got)
	}
	if got := WeekTotalWithElimination(r, stats, round.Conference, lookup); got != 6 {
		t.Fatalf("expected only p2 to count in conference, got %v", got)
	}
	if got := WeekTotal(r, stats, round.Conference); got != 12 {
		t.Fatalf("raw total must ignore elimination, got %v", got)
	}
}

func TestIsSuppressed(t *testing.T) {
	divisional := round.Divisional
	eliminated := team.Team{ID: "t", EliminatedIn: &divisional}

	tests := []struct {
		rd   round.Round
		want bool
	}{
		{round.WildCard, false},
		{round.Divisional, false},
		{round.Conference, true},
		{round.SuperBowl, true},
	}
	for _, tt := range tests {
		if got := IsSuppressed(eliminated, tt.rd); got != tt.want {
			t.Fatalf("round=%s: expected %v, got %v", tt.rd, tt.want, got)
		}
	}
	if IsSuppressed(team.Team{ID: "alive"}, round.SuperBowl) {
		t.Fatalf("alive team must never be suppressed")
	}
}

func TestLeaderboard_StableOnTies(t *testing.T) {
	ps := []participant.Participant{
		{ID: "a", RoundScores: map[round.Round]float64{round.WildCard: 10.5}},
		{ID: "b", RoundScores: map[round.Round]float64{round.WildCard: 20}},
		{ID: "c", RoundScores: map[round.Round]float64{round.WildCard: 15, round.Divisional: 5}},
		{ID: "d", RoundScores: map[round.Round]float64{round.Conference: 5}},
	}

	got := Leaderboard(ps)
	wantOrder := []string{"b", "c", "a", "d"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if ps[0].ID != "a" {
		t.Fatalf("leaderboard must not reorder its input")
	}

	standings := Ranked(got, participant.Participant.Total)
	wantRanks := []int{1, 1, 2, 3}
	for i, rank := range wantRanks {
		if standings[i].Rank != rank {
			t.Fatalf("position %d: expected rank %d, got %d", i, rank, standings[i].Rank)
		}
	}
}

func TestRankingByRound(t *testing.T) {
	ps := []participant.Participant{
		{ID: "a", RoundScores: map[round.Round]float64{round.WildCard: 50, round.Divisional: 1}},
		{ID: "b", RoundScores: map[round.Round]float64{round.Divisional: 9}},
		{ID: "c"},
	}
	got := RankingByRound(ps, round.Divisional)
	if got[0].ID != "b" || got[1].ID != "a" || got[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestCachedTotalMatchesLiveTotal(t *testing.T) {
	r := testRoster()
	var records []playerstats.Record
	for i, id := range r.PlayerIDs() {
		for j, rd := range round.All() {
			records = append(records, playerstats.Record{
				PlayerID: id,
				Round:    rd,
				Line: playerstats.Line{
					CatchesSacks: float64(i % 4),
					PassYards:    float64(17 * (i + j)),
					ReturnYards:  float64(i * j),
				},
			})
		}
	}
	stats := NewStatIndex(records)

	cached := participant.Participant{RoundScores: map[round.Round]float64{}}
	for _, rd := range round.All() {
		cached.RoundScores[rd] = WeekTotal(r, stats, rd)
	}

	if !almostEqual(cached.Total(), ParticipantTotal(r, stats)) {
		t.Fatalf("cached total %v differs from live total %v", cached.Total(), ParticipantTotal(r, stats))
	}
}
