package player

import "fmt"

type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// AllPositions lists positions in display order.
var AllPositions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDEF}

func (p Position) Valid() bool {
	return p.SortOrder() > 0
}

// SortOrder ranks positions for stat sheets: QB first, DEF last, 0 when unknown.
func (p Position) SortOrder() int {
	for i, candidate := range AllPositions {
		if candidate == p {
			return i + 1
		}
	}
	return 0
}

// Player is a draftable athlete (or team defense) belonging to one playoff team.
type Player struct {
	ID       string
	Name     string
	Position Position
	TeamID   string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if !p.Position.Valid() {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}

	return nil
}
