package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the common query surface shared by pgxpool.Pool, pgx.Tx, and the
// pgxmock test pool. Repositories depend on this interface so they can run
// against either a live pool or a mock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool extends DBTX with transaction support for repositories that need
// multi-statement atomicity (e.g. the rating recompute).
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}
