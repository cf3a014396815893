package httpapi

import (
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type slotDTO struct {
	Key     string   `json:"key"`
	Allowed []string `json:"allowed"`
	Flex    bool     `json:"flex"`
}

type teamDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Short        string  `json:"short"`
	Seed         int     `json:"seed"`
	EliminatedIn *string `json:"eliminated_in"`
}

type playerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	TeamID   string `json:"team_id"`
}

type playerStatDTO struct {
	ID             string           `json:"id"`
	PlayerID       string           `json:"player_id"`
	PlayerName     string           `json:"player_name,omitempty"`
	Position       string           `json:"position,omitempty"`
	TeamID         string           `json:"team_id,omitempty"`
	Round          string           `json:"round"`
	FormulaVersion string           `json:"formula_version"`
	Line           playerstats.Line `json:"line"`
	Score          float64          `json:"score"`
}

type rosterEntryDTO struct {
	Slot   string    `json:"slot"`
	Player playerDTO `json:"player"`
}

type participantDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	IsLocked    bool               `json:"is_locked"`
	RoundScores map[string]float64 `json:"round_scores"`
	Total       float64            `json:"total"`
	CreatedAt   time.Time          `json:"created_at"`
}

type standingDTO struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	Points        float64 `json:"points"`
	IsLocked      bool    `json:"is_locked"`
}

type slotScoreDTO struct {
	Slot       string             `json:"slot"`
	Player     playerDTO          `json:"player"`
	Points     map[string]float64 `json:"points"`
	Suppressed map[string]bool    `json:"suppressed"`
}

type breakdownDTO struct {
	Participant participantDTO     `json:"participant"`
	Slots       []slotScoreDTO     `json:"slots"`
	RoundTotals map[string]float64 `json:"round_totals"`
	Total       float64            `json:"total"`
	Cached      float64            `json:"cached"`
}

type draftCheckDTO struct {
	Valid  bool             `json:"valid"`
	Roster []rosterEntryDTO `json:"roster"`
}

type signupDTO struct {
	Participant participantDTO   `json:"participant"`
	Roster      []rosterEntryDTO `json:"roster"`
	SeededStats int              `json:"seeded_stats"`
}

type statUpdateDTO struct {
	Stat          playerStatDTO               `json:"stat"`
	Recalculation usecase.RecalculationResult `json:"recalculation"`
}

type lockAllDTO struct {
	Locked  bool `json:"locked"`
	Updated int  `json:"updated"`
}

type seedStatsDTO struct {
	Created int `json:"created"`
}

func slotToDTO(s roster.Slot) slotDTO {
	allowed := make([]string, 0, len(s.Allowed))
	for _, pos := range s.Allowed {
		allowed = append(allowed, string(pos))
	}
	return slotDTO{Key: string(s.Key), Allowed: allowed, Flex: s.IsFlex()}
}

func teamToDTO(t team.Team) teamDTO {
	out := teamDTO{ID: t.ID, Name: t.Name, Short: t.Short, Seed: t.Seed}
	if t.EliminatedIn != nil {
		value := string(*t.EliminatedIn)
		out.EliminatedIn = &value
	}
	return out
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{ID: p.ID, Name: p.Name, Position: string(p.Position), TeamID: p.TeamID}
}

func statToDTO(rec playerstats.Record, p player.Player, score float64) playerStatDTO {
	return playerStatDTO{
		ID:             rec.ID,
		PlayerID:       rec.PlayerID,
		PlayerName:     p.Name,
		Position:       string(p.Position),
		TeamID:         p.TeamID,
		Round:          string(rec.Round),
		FormulaVersion: string(rec.FormulaVersion),
		Line:           rec.Line,
		Score:          score,
	}
}

// rosterToDTO lists the roster in slot order; empty slots are left out.
func rosterToDTO(r roster.Roster) []rosterEntryDTO {
	out := make([]rosterEntryDTO, 0, len(r))
	for _, slot := range roster.Slots() {
		p, ok := r[slot.Key]
		if !ok {
			continue
		}
		out = append(out, rosterEntryDTO{Slot: string(slot.Key), Player: playerToDTO(p)})
	}
	return out
}

func roundMap[V any](in map[round.Round]V) map[string]V {
	out := make(map[string]V, len(in))
	for rd, v := range in {
		out[string(rd)] = v
	}
	return out
}

func participantToDTO(p participant.Participant) participantDTO {
	scores := make(map[string]float64, round.Count)
	for _, rd := range round.All() {
		scores[string(rd)] = p.Score(rd)
	}
	return participantDTO{
		ID:          p.ID,
		Name:        p.Name,
		IsLocked:    p.IsLocked,
		RoundScores: scores,
		Total:       p.Total(),
		CreatedAt:   p.CreatedAt,
	}
}

func standingsToDTO(items []scoring.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, s := range items {
		out = append(out, standingDTO{
			Rank:          s.Rank,
			ParticipantID: s.Participant.ID,
			Name:          s.Participant.Name,
			Points:        s.Points,
			IsLocked:      s.Participant.IsLocked,
		})
	}
	return out
}

func breakdownToDTO(b usecase.Breakdown) breakdownDTO {
	slots := make([]slotScoreDTO, 0, len(b.Slots))
	for _, s := range b.Slots {
		slots = append(slots, slotScoreDTO{
			Slot:       string(s.Slot),
			Player:     playerToDTO(s.Player),
			Points:     roundMap(s.Points),
			Suppressed: roundMap(s.Suppressed),
		})
	}
	return breakdownDTO{
		Participant: participantToDTO(b.Participant),
		Slots:       slots,
		RoundTotals: roundMap(b.RoundTotals),
		Total:       b.Total,
		Cached:      b.Cached,
	}
}
