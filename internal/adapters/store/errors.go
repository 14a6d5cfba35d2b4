package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

// classify converts a driver error into a DomainError that keeps the
// original as its cause. Not-found is handled by callers, which know the
// resource.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.ErrTimeout("database operation did not complete in time").WithCause(err)
	}

	if msg, ok := constraintViolation(err); ok {
		return core.ErrConstraint(msg).WithCause(err)
	}

	return core.ErrDatabase("database operation failed").WithCause(err)
}

// constraintViolation reports whether err is an integrity constraint
// violation (SQLSTATE class 23 or SQLITE_CONSTRAINT) and describes it.
func constraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "23") {
			return constraintMessage(pgErr.ConstraintName, pgErr.Message), true
		}
		return "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "23" {
			return constraintMessage(pqErr.Constraint, pqErr.Message), true
		}
		return "", false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return constraintMessage("", liteErr.Error()), true
		}
	}

	return "", false
}

func constraintMessage(constraint, detail string) string {
	if constraint != "" {
		return "violates constraint " + constraint
	}
	return detail
}

// notFoundOr maps sql.ErrNoRows to a not-found error for resource id and
// classifies anything else.
func notFoundOr(err error, resource, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound(resource, id)
	}
	return classify(err)
}
