package playerstats

import (
	"fmt"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

// FormulaVersion tags which stat schema a record's line was captured under.
type FormulaVersion string

const (
	// FormulaCombined is the current schema with combined counters.
	FormulaCombined FormulaVersion = "v2"
	// FormulaDecomposed is the earlier schema with separate kicking and defense fields.
	FormulaDecomposed FormulaVersion = "v1"
)

func (v FormulaVersion) Valid() bool {
	return v == "" || v == FormulaCombined || v == FormulaDecomposed
}

// Normalize maps the empty tag to the combined schema.
func (v FormulaVersion) Normalize() FormulaVersion {
	if v == "" {
		return FormulaCombined
	}
	return v
}

// Line holds raw counting stats for one player in one round. A record fills only
// the fields of its formula version; the other group stays zero.
type Line struct {
	// v2
	CatchesSacks     float64 `json:"catches_sacks"`
	PassYards        float64 `json:"pass_yards"`
	RushRecFGYards   float64 `json:"rush_rec_fg_yards"`
	TDs              float64 `json:"tds"`
	Turnovers        float64 `json:"turnovers"`
	TwoPt            float64 `json:"two_pt"`
	DefTurnoversMisc float64 `json:"def_turnovers_misc"`
	ReturnYards      float64 `json:"return_yards"`

	// v1 only
	Catches       float64 `json:"catches,omitempty"`
	RushRecYards  float64 `json:"rush_rec_yards,omitempty"`
	MiscTD        float64 `json:"misc_td,omitempty"`
	FGYards       float64 `json:"fg_yards,omitempty"`
	Sacks         float64 `json:"sacks,omitempty"`
	DefTurnovers  float64 `json:"def_turnovers,omitempty"`
	Safety        float64 `json:"safety,omitempty"`
	PointsAllowed *int    `json:"points_allowed,omitempty"`
}

// Record is the single stat row for a (player, round) pair.
type Record struct {
	ID             string
	PlayerID       string
	Round          round.Round
	FormulaVersion FormulaVersion
	Line           Line
}

func (r Record) Key() Key {
	return Key{PlayerID: r.PlayerID, Round: r.Round}
}

func (r Record) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("stat record player id is required")
	}
	if !r.Round.Valid() {
		return fmt.Errorf("stat record %s: %w", r.ID, round.ErrUnknownRound)
	}
	if !r.FormulaVersion.Valid() {
		return fmt.Errorf("stat record %s has unknown formula version %q", r.ID, r.FormulaVersion)
	}
	return nil
}

// Key identifies the one record a player has per round.
type Key struct {
	PlayerID string
	Round    round.Round
}

// KeysFor lists every (player, round) pair for the given players across all rounds.
func KeysFor(playerIDs []string) []Key {
	out := make([]Key, 0, len(playerIDs)*round.Count)
	for _, id := range playerIDs {
		for _, rd := range round.All() {
			out = append(out, Key{PlayerID: id, Round: rd})
		}
	}
	return out
}
