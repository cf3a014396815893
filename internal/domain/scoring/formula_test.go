package scoring

import (
	"math"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func intPtr(v int) *int {
	return &v
}

func TestScore_Combined(t *testing.T) {
	tests := []struct {
		name string
		line playerstats.Line
		want float64
	}{
		{
			name: "reference line",
			line: playerstats.Line{CatchesSacks: 3, PassYards: 50, RushRecFGYards: 20, TDs: 1},
			want: 13,
		},
		{
			name: "empty line",
			line: playerstats.Line{},
			want: 0,
		},
		{
			name: "turnovers clamp at zero",
			line: playerstats.Line{Turnovers: 3},
			want: 0,
		},
		{
			name: "turnovers partially offset",
			line: playerstats.Line{TDs: 1, Turnovers: 1},
			want: 4,
		},
		{
			name: "rounds to two decimals",
			line: playerstats.Line{PassYards: 1, ReturnYards: 1},
			want: 0.09,
		},
		{
			name: "every field",
			line: playerstats.Line{
				CatchesSacks:     2,
				PassYards:        250,
				RushRecFGYards:   45,
				TDs:              2,
				Turnovers:        1,
				TwoPt:            1,
				DefTurnoversMisc: 1,
				ReturnYards:      40,
			},
			want: 2 + 10 + 4.5 + 12 - 2 + 2 + 2 + 2,
		},
		{
			name: "decomposed fields are ignored",
			line: playerstats.Line{Catches: 5, MiscTD: 1, PointsAllowed: intPtr(0)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := playerstats.Record{FormulaVersion: playerstats.FormulaCombined, Line: tt.line}
			if got := Score(rec); !almostEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScore_EmptyVersionUsesCombined(t *testing.T) {
	rec := playerstats.Record{Line: playerstats.Line{CatchesSacks: 3, PassYards: 50, RushRecFGYards: 20, TDs: 1}}
	if got := Score(rec); !almostEqual(got, 13) {
		t.Fatalf("expected 13, got %v", got)
	}
}

func TestScore_Decomposed(t *testing.T) {
	tests := []struct {
		name string
		line playerstats.Line
		want float64
	}{
		{
			name: "offense only",
			line: playerstats.Line{Catches: 4, RushRecYards: 55, TDs: 1, MiscTD: 1},
			want: 4 + 5.5 + 6 + 6,
		},
		{
			name: "kicker",
			line: playerstats.Line{FGYards: 120, TwoPt: 1},
			want: 14,
		},
		{
			name: "no points allowed value means no band",
			line: playerstats.Line{},
			want: 0,
		},
		{
			name: "shutout defense",
			line: playerstats.Line{Sacks: 3, DefTurnovers: 2, Safety: 1, PointsAllowed: intPtr(0)},
			want: 3 + 4 + 2 + 15,
		},
		{
			name: "negative band floors at zero",
			line: playerstats.Line{PointsAllowed: intPtr(30)},
			want: 0,
		},
		{
			name: "no rounding applied",
			line: playerstats.Line{PassYards: 1},
			want: 0.04,
		},
		{
			name: "combined fields are ignored",
			line: playerstats.Line{CatchesSacks: 9, RushRecFGYards: 100, DefTurnoversMisc: 3},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := playerstats.Record{FormulaVersion: playerstats.FormulaDecomposed, Line: tt.line}
			if got := Score(rec); !almostEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPointsAllowedBand(t *testing.T) {
	tests := []struct {
		allowed int
		want    float64
	}{
		{0, 15}, {1, 10}, {6, 10}, {7, 7}, {13, 7},
		{14, 3}, {25, 3}, {26, -1}, {35, -1}, {36, 0}, {60, 0},
	}
	for _, tt := range tests {
		if got := PointsAllowedBand(tt.allowed); got != tt.want {
			t.Fatalf("allowed=%d: expected %v, got %v", tt.allowed, tt.want, got)
		}
	}
}

func TestScore_NeverNegative(t *testing.T) {
	for _, version := range []playerstats.FormulaVersion{playerstats.FormulaCombined, playerstats.FormulaDecomposed} {
		for turnovers := 0.0; turnovers <= 10; turnovers++ {
			rec := playerstats.Record{
				FormulaVersion: version,
				Line:           playerstats.Line{Turnovers: turnovers, PassYards: 10, PointsAllowed: intPtr(40)},
			}
			if got := Score(rec); got < 0 {
				t.Fatalf("version=%s turnovers=%v: negative score %v", version, turnovers, got)
			}
		}
	}
}
