package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

const rosterPickJoin = "roster_picks rp JOIN players p ON p.public_id = rp.player_public_id"

var rosterPickColumns = []string{
	"rp.participant_public_id",
	"rp.slot",
	"rp.player_public_id",
	"p.name",
	"p.position",
	"p.team_public_id",
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// CreateRows writes all picks in one transaction. The (participant, team) unique
// index rejects a roster that repeats a team.
func (r *RosterRepository) CreateRows(ctx context.Context, participantID string, picks roster.Roster) error {
	if len(picks) == 0 {
		return fmt.Errorf("create roster rows participant=%s: empty roster", participantID)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create roster rows: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert := qb.InsertInto("roster_picks").
		Columns("participant_public_id", "slot", "player_public_id", "team_public_id")
	for _, slot := range roster.Slots() {
		p, ok := picks[slot.Key]
		if !ok {
			continue
		}
		insert.Values(participantID, string(slot.Key), p.ID, p.TeamID)
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert roster rows query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert roster rows participant=%s: %w", participantID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create roster rows tx: %w", err)
	}
	return nil
}

func (r *RosterRepository) GetByParticipant(ctx context.Context, participantID string) (roster.Roster, bool, error) {
	query, args, err := qb.Select(rosterPickColumns...).From(rosterPickJoin).
		Where(qb.Eq("rp.participant_public_id", participantID)).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build select roster query: %w", err)
	}

	var rows []rosterPickRow
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, false, fmt.Errorf("select roster participant=%s: %w", participantID, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	out := make(roster.Roster, len(rows))
	for _, row := range rows {
		out[roster.SlotKey(row.Slot)] = pickPlayer(row)
	}
	return out, true, nil
}

func (r *RosterRepository) ListAll(ctx context.Context) (map[string]roster.Roster, error) {
	query, args, err := qb.Select(rosterPickColumns...).From(rosterPickJoin).
		OrderBy("rp.participant_public_id", "rp.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rosters query: %w", err)
	}

	var rows []rosterPickRow
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rosters: %w", err)
	}

	out := make(map[string]roster.Roster)
	for _, row := range rows {
		picks, ok := out[row.ParticipantID]
		if !ok {
			picks = make(roster.Roster, roster.Size)
			out[row.ParticipantID] = picks
		}
		picks[roster.SlotKey(row.Slot)] = pickPlayer(row)
	}
	return out, nil
}

func pickPlayer(row rosterPickRow) player.Player {
	return player.Player{
		ID:       row.PlayerID,
		Name:     row.Name,
		Position: player.Position(row.Position),
		TeamID:   row.TeamID,
	}
}
