package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/round"
)

func TestIsBindParameterMismatch(t *testing.T) {
	t.Run("matches bind mismatch error", func(t *testing.T) {
		err := fakeErr("pq: bind message supplies 2 parameters, but prepared statement \"\" requires 1 (08P01)")
		if !isBindParameterMismatch(err) {
			t.Fatalf("expected true for bind mismatch error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation roster_picks does not exist")
		if isBindParameterMismatch(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUnnamedPreparedStatementMissing(t *testing.T) {
	t.Run("matches statement missing message", func(t *testing.T) {
		err := fakeErr("pq: unnamed prepared statement does not exist (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for statement missing error")
		}
	})

	t.Run("matches by 26000 code", func(t *testing.T) {
		err := fakeErr("pq: prepared statement missing (26000)")
		if !isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected true for 26000 prepared statement error")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		err := fakeErr("pq: relation roster_picks does not exist")
		if isUnnamedPreparedStatementMissing(err) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestQuoteLiteral(t *testing.T) {
	got := quoteLiteral("o'hara")
	if got != "'o''hara'" {
		t.Fatalf("unexpected quoted literal: %s", got)
	}
}

func TestPositionOrderExpr(t *testing.T) {
	got := positionOrderExpr("p.position")
	want := "array_position(ARRAY['QB', 'RB', 'WR', 'TE', 'K', 'DEF']::text[], p.position)"
	if got != want {
		t.Fatalf("unexpected order expression:\n got %s\nwant %s", got, want)
	}
}

func TestNullableIntConversion(t *testing.T) {
	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for null column, got %d", *got)
	}
	value := 17
	column := intPtrToNullInt64(&value)
	if !column.Valid || column.Int64 != 17 {
		t.Fatalf("unexpected column value: %+v", column)
	}
	back := nullInt64ToIntPtr(column)
	if back == nil || *back != 17 {
		t.Fatalf("expected 17 after conversion, got %v", back)
	}
	if intPtrToNullInt64(nil).Valid {
		t.Fatalf("expected invalid column for nil pointer")
	}
}

func TestIsNotFoundMatchesWrappedNoRows(t *testing.T) {
	if !isNotFound(fmt.Errorf("get team: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: connection refused")) {
		t.Fatalf("expected unrelated error to not be not found")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestRoundOrderExprFollowsPlayoffOrder(t *testing.T) {
	want := "array_position(ARRAY['wildcard', 'divisional', 'conference', 'superbowl']::text[], round)"
	if roundOrderExpr != want {
		t.Fatalf("unexpected round order:\n got %s\nwant %s", roundOrderExpr, want)
	}
}

func TestRoundScoreColumnsCoverEveryRound(t *testing.T) {
	for _, rd := range round.All() {
		if _, ok := roundScoreColumns[rd]; !ok {
			t.Fatalf("round %s has no score column", rd)
		}
	}
}
