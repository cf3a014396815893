package scoring

import (
	"sort"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
)

// StatIndex looks up the stat record for a (player, round) pair.
type StatIndex map[playerstats.Key]playerstats.Record

// NewStatIndex indexes records by key. A later duplicate replaces an earlier one.
func NewStatIndex(records []playerstats.Record) StatIndex {
	out := make(StatIndex, len(records))
	for _, rec := range records {
		out[rec.Key()] = rec
	}
	return out
}

// PlayerScore scores one player in one round, 0 when no record exists.
func (s StatIndex) PlayerScore(playerID string, rd round.Round) float64 {
	rec, ok := s[playerstats.Key{PlayerID: playerID, Round: rd}]
	if !ok {
		return 0
	}
	return Score(rec)
}

// WeekTotal sums the round scores of every rostered player, in slot order so the
// float sum is the same on every call.
func WeekTotal(r roster.Roster, stats StatIndex, rd round.Round) float64 {
	var total float64
	for _, p := range r.Players() {
		total += stats.PlayerScore(p.ID, rd)
	}
	return total
}

// TeamLookup resolves a team by id for elimination checks.
type TeamLookup func(teamID string) (team.Team, bool)

// WeekTotalWithElimination is WeekTotal with players of teams already eliminated
// before rd counted as zero. Unknown teams are not suppressed.
func WeekTotalWithElimination(r roster.Roster, stats StatIndex, rd round.Round, lookup TeamLookup) float64 {
	var total float64
	for _, p := range r.Players() {
		if lookup != nil {
			if t, ok := lookup(p.TeamID); ok && IsSuppressed(t, rd) {
				continue
			}
		}
		total += stats.PlayerScore(p.ID, rd)
	}
	return total
}

// ParticipantTotal sums WeekTotal over all four rounds.
func ParticipantTotal(r roster.Roster, stats StatIndex) float64 {
	var total float64
	for _, rd := range round.All() {
		total += WeekTotal(r, stats, rd)
	}
	return total
}

// IsSuppressed reports whether a team's players are hidden from rd's display.
func IsSuppressed(t team.Team, rd round.Round) bool {
	if t.EliminatedIn == nil {
		return false
	}
	return rd.Index() > t.EliminatedIn.Index()
}

// Leaderboard orders participants by cached total, highest first. Ties keep input order.
func Leaderboard(ps []participant.Participant) []participant.Participant {
	return sortedBy(ps, participant.Participant.Total)
}

// RankingByRound orders participants by one cached round score, highest first.
func RankingByRound(ps []participant.Participant, rd round.Round) []participant.Participant {
	return sortedBy(ps, func(p participant.Participant) float64 { return p.Score(rd) })
}

func sortedBy(ps []participant.Participant, key func(participant.Participant) float64) []participant.Participant {
	out := make([]participant.Participant, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	return out
}

// Standing is a participant with its position on a board.
type Standing struct {
	Rank        int
	Participant participant.Participant
	Points      float64
}

// Ranked numbers an already ordered board. Equal points share a rank and the next
// distinct value takes the following rank (1, 2, 2, 3).
func Ranked(ordered []participant.Participant, points func(participant.Participant) float64) []Standing {
	out := make([]Standing, 0, len(ordered))
	var last float64
	rank := 0
	for idx, p := range ordered {
		value := points(p)
		if idx == 0 || value != last {
			rank++
			last = value
		}
		out = append(out, Standing{Rank: rank, Participant: p, Points: value})
	}
	return out
}
