package memory

import (
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
)

type seedTeam struct {
	id, name, short string
	seed            int
	qb, rb, wr, te, k string
}

// seedField is the fourteen-team playoff field, AFC seeds 1-7 then NFC seeds 1-7.
var seedField = []seedTeam{
	{"kc", "Kansas City Chiefs", "KC", 1, "Patrick Mahomes", "Kareem Hunt", "Xavier Worthy", "Travis Kelce", "Harrison Butker"},
	{"buf", "Buffalo Bills", "BUF", 2, "Josh Allen", "James Cook", "Khalil Shakir", "Dalton Kincaid", "Tyler Bass"},
	{"bal", "Baltimore Ravens", "BAL", 3, "Lamar Jackson", "Derrick Henry", "Zay Flowers", "Mark Andrews", "Justin Tucker"},
	{"hou", "Houston Texans", "HOU", 4, "C.J. Stroud", "Joe Mixon", "Nico Collins", "Dalton Schultz", "Ka'imi Fairbairn"},
	{"lac", "Los Angeles Chargers", "LAC", 5, "Justin Herbert", "J.K. Dobbins", "Ladd McConkey", "Will Dissly", "Cameron Dicker"},
	{"pit", "Pittsburgh Steelers", "PIT", 6, "Russell Wilson", "Najee Harris", "George Pickens", "Pat Freiermuth", "Chris Boswell"},
	{"den", "Denver Broncos", "DEN", 7, "Bo Nix", "Javonte Williams", "Courtland Sutton", "Adam Trautman", "Wil Lutz"},
	{"det", "Detroit Lions", "DET", 8, "Jared Goff", "Jahmyr Gibbs", "Amon-Ra St. Brown", "Sam LaPorta", "Jake Bates"},
	{"phi", "Philadelphia Eagles", "PHI", 9, "Jalen Hurts", "Saquon Barkley", "A.J. Brown", "Dallas Goedert", "Jake Elliott"},
	{"tb", "Tampa Bay Buccaneers", "TB", 10, "Baker Mayfield", "Bucky Irving", "Mike Evans", "Cade Otton", "Chase McLaughlin"},
	{"lar", "Los Angeles Rams", "LAR", 11, "Matthew Stafford", "Kyren Williams", "Puka Nacua", "Tyler Higbee", "Joshua Karty"},
	{"min", "Minnesota Vikings", "MIN", 12, "Sam Darnold", "Aaron Jones", "Justin Jefferson", "T.J. Hockenson", "Will Reichard"},
	{"was", "Washington Commanders", "WAS", 13, "Jayden Daniels", "Brian Robinson Jr.", "Terry McLaurin", "Zach Ertz", "Zane Gonzalez"},
	{"gb", "Green Bay Packers", "GB", 14, "Jordan Love", "Josh Jacobs", "Jayden Reed", "Tucker Kraft", "Brandon McManus"},
}

func SeedTeams() []team.Team {
	out := make([]team.Team, 0, len(seedField))
	for _, item := range seedField {
		out = append(out, team.Team{ID: item.id, Name: item.name, Short: item.short, Seed: item.seed})
	}
	return out
}

// SeedPlayers returns one player per position for every seeded team. Ids are
// "<team>-<position>", e.g. "kc-qb".
func SeedPlayers() []player.Player {
	out := make([]player.Player, 0, len(seedField)*len(player.AllPositions))
	for _, item := range seedField {
		names := map[player.Position]string{
			player.PositionQB:  item.qb,
			player.PositionRB:  item.rb,
			player.PositionWR:  item.wr,
			player.PositionTE:  item.te,
			player.PositionK:   item.k,
			player.PositionDEF: item.name + " D/ST",
		}
		for _, pos := range player.AllPositions {
			out = append(out, player.Player{
				ID:       SeedPlayerID(item.id, pos),
				Name:     names[pos],
				Position: pos,
				TeamID:   item.id,
			})
		}
	}
	return out
}

func SeedPlayerID(teamID string, pos player.Position) string {
	return teamID + "-" + strings.ToLower(string(pos))
}
