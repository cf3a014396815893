package roster

import (
	"slices"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

type SlotKey string

const (
	SlotQB1  SlotKey = "QB1"
	SlotQB2  SlotKey = "QB2"
	SlotRB1  SlotKey = "RB1"
	SlotRB2  SlotKey = "RB2"
	SlotWR1  SlotKey = "WR1"
	SlotWR2  SlotKey = "WR2"
	SlotTE1  SlotKey = "TE1"
	SlotTE2  SlotKey = "TE2"
	SlotSF1  SlotKey = "SF1"
	SlotSF2  SlotKey = "SF2"
	SlotK1   SlotKey = "K1"
	SlotK2   SlotKey = "K2"
	SlotDEF1 SlotKey = "DEF1"
	SlotDEF2 SlotKey = "DEF2"
)

// Slot is one roster position and the player positions allowed to fill it.
type Slot struct {
	Key     SlotKey
	Allowed []player.Position
}

func (s Slot) Allows(pos player.Position) bool {
	return slices.Contains(s.Allowed, pos)
}

// IsFlex reports whether the slot takes more than one position.
func (s Slot) IsFlex() bool {
	return len(s.Allowed) > 1
}

var (
	onlyQB  = []player.Position{player.PositionQB}
	onlyRB  = []player.Position{player.PositionRB}
	onlyWR  = []player.Position{player.PositionWR}
	onlyTE  = []player.Position{player.PositionTE}
	onlyK   = []player.Position{player.PositionK}
	onlyDEF = []player.Position{player.PositionDEF}
	flex    = []player.Position{player.PositionQB, player.PositionRB, player.PositionWR, player.PositionTE}
)

// schema order is observable: validation reports the first missing slot in this order.
var schema = []Slot{
	{Key: SlotQB1, Allowed: onlyQB},
	{Key: SlotQB2, Allowed: onlyQB},
	{Key: SlotRB1, Allowed: onlyRB},
	{Key: SlotRB2, Allowed: onlyRB},
	{Key: SlotWR1, Allowed: onlyWR},
	{Key: SlotWR2, Allowed: onlyWR},
	{Key: SlotTE1, Allowed: onlyTE},
	{Key: SlotTE2, Allowed: onlyTE},
	{Key: SlotSF1, Allowed: flex},
	{Key: SlotSF2, Allowed: flex},
	{Key: SlotK1, Allowed: onlyK},
	{Key: SlotK2, Allowed: onlyK},
	{Key: SlotDEF1, Allowed: onlyDEF},
	{Key: SlotDEF2, Allowed: onlyDEF},
}

// Size is the number of slots a complete roster fills.
const Size = 14

// Slots returns a copy of the slot schema in order.
func Slots() []Slot {
	out := make([]Slot, len(schema))
	for i, s := range schema {
		out[i] = Slot{Key: s.Key, Allowed: append([]player.Position(nil), s.Allowed...)}
	}
	return out
}

func SlotByKey(key SlotKey) (Slot, bool) {
	for _, s := range schema {
		if s.Key == key {
			return Slot{Key: s.Key, Allowed: append([]player.Position(nil), s.Allowed...)}, true
		}
	}
	return Slot{}, false
}

// FirstSlot is where a new draft starts.
func FirstSlot() SlotKey {
	return schema[0].Key
}
