package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context, filter player.Filter) ([]player.Player, error) {
	var conditions []qb.Condition
	if filter.TeamID != "" {
		conditions = append(conditions, qb.Eq("team_public_id", filter.TeamID))
	}
	if len(filter.Positions) > 0 {
		positions := make([]string, 0, len(filter.Positions))
		for _, pos := range filter.Positions {
			positions = append(positions, string(pos))
		}
		conditions = append(conditions, qb.Expr("position = ANY(?)", pq.Array(positions)))
	}
	if len(filter.IDs) > 0 {
		conditions = append(conditions, qb.Expr("public_id = ANY(?)", pq.Array(filter.IDs)))
	}

	query, args, err := qb.Select("*").From("players").
		Where(conditions...).
		OrderBy(positionOrderExpr("position"), "name", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}
	return r.List(ctx, player.Filter{IDs: playerIDs})
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:       row.PublicID,
		Name:     row.Name,
		Position: player.Position(row.Position),
		TeamID:   row.TeamID,
	}
}
