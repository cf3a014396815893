package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		OrderBy("seed", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("public_id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}

	var row teamTableModel
	if err := getWithRetry(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by id: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) UpdateElimination(ctx context.Context, teamID string, eliminatedIn *round.Round) error {
	value := sql.NullString{}
	if eliminatedIn != nil {
		value = sql.NullString{String: string(*eliminatedIn), Valid: true}
	}

	query, args, err := qb.Update("teams").
		Set("eliminated_in", value).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team elimination query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team elimination team=%s: %w", teamID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows team=%s: %w", teamID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update team elimination: team %s not found", teamID)
	}
	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	out := team.Team{
		ID:    row.PublicID,
		Name:  row.Name,
		Short: row.Short,
		Seed:  row.Seed,
	}
	if row.EliminatedIn.Valid {
		rd := round.Round(row.EliminatedIn.String)
		out.EliminatedIn = &rd
	}
	return out
}
