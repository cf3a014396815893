package scoring

import (
	"math"

	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
)

// Score converts one stat record into fantasy points. The record's formula version
// selects which field group is read; an empty version scores as the combined schema.
func Score(rec playerstats.Record) float64 {
	switch rec.FormulaVersion.Normalize() {
	case playerstats.FormulaDecomposed:
		return scoreDecomposed(rec.Line)
	default:
		return scoreCombined(rec.Line)
	}
}

func scoreCombined(l playerstats.Line) float64 {
	points := l.CatchesSacks +
		l.PassYards/25 +
		l.RushRecFGYards/10 +
		l.TDs*6 -
		l.Turnovers*2 +
		l.TwoPt*2 +
		l.DefTurnoversMisc*2 +
		l.ReturnYards/20

	return roundHalfUp(math.Max(points, 0))
}

func scoreDecomposed(l playerstats.Line) float64 {
	points := l.Catches +
		l.PassYards/25 +
		l.RushRecYards/10 +
		l.TDs*6 -
		l.Turnovers*2 +
		l.TwoPt*2 +
		l.MiscTD*6 +
		l.FGYards/10 +
		l.Sacks +
		l.DefTurnovers*2 +
		l.Safety*2 +
		l.ReturnYards/20
	if l.PointsAllowed != nil {
		points += PointsAllowedBand(*l.PointsAllowed)
	}

	return math.Max(points, 0)
}

// PointsAllowedBand is the defensive bonus for points surrendered. Upper bounds are inclusive.
func PointsAllowedBand(allowed int) float64 {
	switch {
	case allowed <= 0:
		return 15
	case allowed <= 6:
		return 10
	case allowed <= 13:
		return 7
	case allowed <= 25:
		return 3
	case allowed <= 35:
		return -1
	default:
		return 0
	}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
