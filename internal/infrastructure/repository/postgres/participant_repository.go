package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

// roundScoreColumns whitelists the cached score column per round.
var roundScoreColumns = map[round.Round]string{
	round.WildCard:   "wildcard_score",
	round.Divisional: "divisional_score",
	round.Conference: "conference_score",
	round.SuperBowl:  "superbowl_score",
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, item participant.Participant) error {
	query, args, err := qb.InsertInto("participants").
		Columns("public_id", "name", "is_locked", "wildcard_score", "divisional_score", "conference_score", "superbowl_score", "created_at").
		Values(
			item.ID,
			item.Name,
			item.IsLocked,
			item.Score(round.WildCard),
			item.Score(round.Divisional),
			item.Score(round.Conference),
			item.Score(round.SuperBowl),
			item.CreatedAt,
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert participant query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert participant id=%s: %w", item.ID, err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE to drop roster_picks.
func (r *ParticipantRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := qb.DeleteFrom("participants").
		Where(qb.Eq("public_id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete participant query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete participant id=%s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows participant=%s: %w", id, err)
	}
	return affected > 0, nil
}

func (r *ParticipantRepository) List(ctx context.Context) ([]participant.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select participants query: %w", err)
	}

	var rows []participantTableModel
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	out := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(qb.Eq("public_id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build select participant query: %w", err)
	}

	var row participantTableModel
	if err := getWithRetry(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("select participant id=%s: %w", id, err)
	}
	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) UpdateRoundScore(ctx context.Context, id string, rd round.Round, value float64) error {
	column, ok := roundScoreColumns[rd]
	if !ok {
		return fmt.Errorf("update round score: %w", round.ErrUnknownRound)
	}

	query, args, err := qb.Update("participants").
		Set(column, value).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update round score query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s participant=%s: %w", column, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows participant=%s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s: participant %s not found", column, id)
	}
	return nil
}

func (r *ParticipantRepository) SetLock(ctx context.Context, id string, locked bool) (bool, error) {
	query, args, err := qb.Update("participants").
		Set("is_locked", locked).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", id)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build set lock query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("set lock participant=%s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows participant=%s: %w", id, err)
	}
	return affected > 0, nil
}

func (r *ParticipantRepository) SetLockAll(ctx context.Context, locked bool) (int, error) {
	query, args, err := qb.Update("participants").
		Set("is_locked", locked).
		SetExpr("updated_at", "NOW()").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build set lock all query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set lock all: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows set lock all: %w", err)
	}
	return int(affected), nil
}

func participantFromRow(row participantTableModel) participant.Participant {
	return participant.Participant{
		ID:       row.PublicID,
		Name:     row.Name,
		IsLocked: row.IsLocked,
		RoundScores: map[round.Round]float64{
			round.WildCard:   row.WildcardScore,
			round.Divisional: row.DivisionalScore,
			round.Conference: row.ConferenceScore,
			round.SuperBowl:  row.SuperbowlScore,
		},
		CreatedAt: row.CreatedAt,
	}
}
