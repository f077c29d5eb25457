// Package repo contains all database access logic for the RV search API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Tests pass a transaction that is rolled back afterwards; Begin on a pgx.Tx
// opens a savepoint, so multi-statement writes still nest correctly.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres SQLSTATEs the repos map to domain outcomes.
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

// isForeignKeyViolation reports whether err is a Postgres FK violation.
func isForeignKeyViolation(err error) bool {
	return hasSQLState(err, foreignKeyViolation)
}

// isUniqueViolation reports whether err is a Postgres unique or primary key violation.
func isUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolation)
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
