package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isBindParameterMismatch matches the error a transaction pooler returns when an
// unnamed statement was swapped between parse and bind.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bind message supplies") && strings.Contains(msg, "requires")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unnamed prepared statement does not exist") {
		return true
	}
	return strings.Contains(msg, "prepared statement") && strings.Contains(msg, "(26000)")
}

func isStatementReset(err error) bool {
	return isBindParameterMismatch(err) || isUnnamedPreparedStatementMissing(err)
}

// selectWithRetry runs a read once more when the pooler dropped the statement.
// Writes never retry.
func selectWithRetry(ctx context.Context, db *sqlx.DB, dest any, query string, args ...any) error {
	err := db.SelectContext(ctx, dest, query, args...)
	if err == nil || !isStatementReset(err) {
		return err
	}
	if retryErr := db.SelectContext(ctx, dest, query, args...); retryErr != nil {
		return crerr.Wrapf(retryErr, "retry after statement reset (first error: %v)", err)
	}
	return nil
}

func getWithRetry(ctx context.Context, db *sqlx.DB, dest any, query string, args ...any) error {
	err := db.GetContext(ctx, dest, query, args...)
	if err == nil || !isStatementReset(err) {
		return err
	}
	if retryErr := db.GetContext(ctx, dest, query, args...); retryErr != nil {
		if isNotFound(retryErr) {
			return retryErr
		}
		return crerr.Wrapf(retryErr, "retry after statement reset (first error: %v)", err)
	}
	return nil
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// positionOrderExpr orders rows QB first and DEF last.
func positionOrderExpr(column string) string {
	values := make([]string, 0, len(player.AllPositions))
	for _, pos := range player.AllPositions {
		values = append(values, string(pos))
	}
	return arrayPositionExpr(column, values)
}

// arrayPositionExpr sorts column by its index in a fixed literal list.
func arrayPositionExpr(column string, values []string) string {
	literals := make([]string, 0, len(values))
	for _, v := range values {
		literals = append(literals, quoteLiteral(v))
	}
	return "array_position(ARRAY[" + strings.Join(literals, ", ") + "]::text[], " + column + ")"
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func intPtrToNullInt64(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}
