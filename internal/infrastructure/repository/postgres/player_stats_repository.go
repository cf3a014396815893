package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	qb "github.com/riskibarqy/playoff-pool/internal/platform/querybuilder"
)

// seedChunkSize bounds bind parameters per seeding insert.
const seedChunkSize = 500

type PlayerStatsRepository struct {
	db      *sqlx.DB
	idGen   id.Generator
	version playerstats.FormulaVersion
}

// NewPlayerStatsRepository tags newly seeded rows with version.
func NewPlayerStatsRepository(db *sqlx.DB, idGen id.Generator, version playerstats.FormulaVersion) *PlayerStatsRepository {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &PlayerStatsRepository{db: db, idGen: idGen, version: version.Normalize()}
}

func (r *PlayerStatsRepository) List(ctx context.Context, filter playerstats.Filter) ([]playerstats.Record, error) {
	var conditions []qb.Condition
	if filter.Round != "" {
		conditions = append(conditions, qb.Eq("round", string(filter.Round)))
	}
	if len(filter.PlayerIDs) > 0 {
		conditions = append(conditions, qb.Expr("player_public_id = ANY(?)", pq.Array(filter.PlayerIDs)))
	}

	query, args, err := qb.Select("*").From("player_stats").
		Where(conditions...).
		OrderBy("player_public_id", roundOrderExpr, "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player stats query: %w", err)
	}

	var rows []playerStatTableModel
	if err := selectWithRetry(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player stats: %w", err)
	}

	out := make([]playerstats.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromRow(row))
	}
	return out, nil
}

func (r *PlayerStatsRepository) GetByID(ctx context.Context, recordID string) (playerstats.Record, bool, error) {
	query, args, err := qb.Select("*").From("player_stats").
		Where(qb.Eq("public_id", recordID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstats.Record{}, false, fmt.Errorf("build select player stat query: %w", err)
	}

	var row playerStatTableModel
	if err := getWithRetry(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstats.Record{}, false, nil
		}
		return playerstats.Record{}, false, fmt.Errorf("select player stat id=%s: %w", recordID, err)
	}
	return recordFromRow(row), true, nil
}

func (r *PlayerStatsRepository) Upsert(ctx context.Context, recordID string, line playerstats.Line) (bool, error) {
	query, args, err := qb.Update("player_stats").
		Set("catches_sacks", line.CatchesSacks).
		Set("pass_yards", line.PassYards).
		Set("rush_rec_fg_yards", line.RushRecFGYards).
		Set("tds", line.TDs).
		Set("turnovers", line.Turnovers).
		Set("two_pt", line.TwoPt).
		Set("def_turnovers_misc", line.DefTurnoversMisc).
		Set("return_yards", line.ReturnYards).
		Set("catches", line.Catches).
		Set("rush_rec_yards", line.RushRecYards).
		Set("misc_td", line.MiscTD).
		Set("fg_yards", line.FGYards).
		Set("sacks", line.Sacks).
		Set("def_turnovers", line.DefTurnovers).
		Set("safety", line.Safety).
		Set("points_allowed", intPtrToNullInt64(line.PointsAllowed)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", recordID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update player stat query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update player stat id=%s: %w", recordID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows player stat=%s: %w", recordID, err)
	}
	return affected > 0, nil
}

// SeedZero inserts zeroed rows; existing (player, round) pairs are left untouched
// by the unique index.
func (r *PlayerStatsRepository) SeedZero(ctx context.Context, keys []playerstats.Key) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx seed player stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	created := 0
	for start := 0; start < len(keys); start += seedChunkSize {
		end := min(start+seedChunkSize, len(keys))

		insert := qb.InsertInto("player_stats").
			Columns("public_id", "player_public_id", "round", "formula_version").
			Suffix("ON CONFLICT (player_public_id, round) DO NOTHING")
		for _, key := range keys[start:end] {
			recordID, err := r.idGen.NewID()
			if err != nil {
				return 0, fmt.Errorf("generate stat record id: %w", err)
			}
			insert.Values(recordID, key.PlayerID, string(key.Round), string(r.version))
		}

		query, args, err := insert.ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build seed player stats query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("seed player stats: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("read affected rows seed player stats: %w", err)
		}
		created += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed player stats tx: %w", err)
	}
	return created, nil
}

var roundOrderExpr = func() string {
	values := make([]string, 0, round.Count)
	for _, rd := range round.All() {
		values = append(values, string(rd))
	}
	return arrayPositionExpr("round", values)
}()

func recordFromRow(row playerStatTableModel) playerstats.Record {
	return playerstats.Record{
		ID:             row.PublicID,
		PlayerID:       row.PlayerID,
		Round:          round.Round(row.Round),
		FormulaVersion: playerstats.FormulaVersion(row.FormulaVersion).Normalize(),
		Line: playerstats.Line{
			CatchesSacks:     row.CatchesSacks,
			PassYards:        row.PassYards,
			RushRecFGYards:   row.RushRecFGYards,
			TDs:              row.TDs,
			Turnovers:        row.Turnovers,
			TwoPt:            row.TwoPt,
			DefTurnoversMisc: row.DefTurnoversMisc,
			ReturnYards:      row.ReturnYards,
			Catches:          row.Catches,
			RushRecYards:     row.RushRecYards,
			MiscTD:           row.MiscTD,
			FGYards:          row.FGYards,
			Sacks:            row.Sacks,
			DefTurnovers:     row.DefTurnovers,
			Safety:           row.Safety,
			PointsAllowed:    nullInt64ToIntPtr(row.PointsAllowed),
		},
	}
}
