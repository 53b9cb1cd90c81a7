package cnx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector is a unified interface for establishing archive database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM tokens, Cloud SQL dialer).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// Querier runs statements. Both a pool and a transaction satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DBConnection is an archive connection that can start transactions.
// *pgxpool.Pool satisfies it.
type DBConnection interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DBConnection = (*pgxpool.Pool)(nil)
