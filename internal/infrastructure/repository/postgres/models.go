package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	Name         string         `db:"name"`
	Short        string         `db:"short"`
	Seed         int            `db:"seed"`
	EliminatedIn sql.NullString `db:"eliminated_in"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type playerTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Position  string    `db:"position"`
	TeamID    string    `db:"team_public_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type participantTableModel struct {
	ID              int64     `db:"id"`
	PublicID        string    `db:"public_id"`
	Name            string    `db:"name"`
	IsLocked        bool      `db:"is_locked"`
	WildcardScore   float64   `db:"wildcard_score"`
	DivisionalScore float64   `db:"divisional_score"`
	ConferenceScore float64   `db:"conference_score"`
	SuperbowlScore  float64   `db:"superbowl_score"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// rosterPickRow is a roster_picks row joined with its player.
type rosterPickRow struct {
	ParticipantID string `db:"participant_public_id"`
	Slot          string `db:"slot"`
	PlayerID      string `db:"player_public_id"`
	Name          string `db:"name"`
	Position      string `db:"position"`
	TeamID        string `db:"team_public_id"`
}

type playerStatTableModel struct {
	ID               int64         `db:"id"`
	PublicID         string        `db:"public_id"`
	PlayerID         string        `db:"player_public_id"`
	Round            string        `db:"round"`
	FormulaVersion   string        `db:"formula_version"`
	CatchesSacks     float64       `db:"catches_sacks"`
	PassYards        float64       `db:"pass_yards"`
	RushRecFGYards   float64       `db:"rush_rec_fg_yards"`
	TDs              float64       `db:"tds"`
	Turnovers        float64       `db:"turnovers"`
	TwoPt            float64       `db:"two_pt"`
	DefTurnoversMisc float64       `db:"def_turnovers_misc"`
	ReturnYards      float64       `db:"return_yards"`
	Catches          float64       `db:"catches"`
	RushRecYards     float64       `db:"rush_rec_yards"`
	MiscTD           float64       `db:"misc_td"`
	FGYards          float64       `db:"fg_yards"`
	Sacks            float64       `db:"sacks"`
	DefTurnovers     float64       `db:"def_turnovers"`
	Safety           float64       `db:"safety"`
	PointsAllowed    sql.NullInt64 `db:"points_allowed"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}
