package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/cnxpopulate/internal/archive"
	"github.com/vvka-141/cnxpopulate/internal/collection"
	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

type mockApprover struct {
	approved bool
	err      error
	targets  []string
}

func (m *mockApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	m.targets = append(m.targets, target)
	return m.approved, m.err
}

type mockStore struct {
	schemaErr error
	exists    bool
	existsErr error
	writeErr  error

	written *collection.Collection
	opts    archive.WriteOptions
}

func (m *mockStore) EnsureSchema(_ context.Context) error {
	return m.schemaErr
}

func (m *mockStore) Exists(_ context.Context, _, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) Write(_ context.Context, coll *collection.Collection, opts archive.WriteOptions) (*archive.Result, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.written = coll
	m.opts = opts
	return &archive.Result{ModuleIdent: 42, Files: coll.Files.Len(), Replaced: opts.Replace}, nil
}

// nopConn is never queried: the mocked store and a file license source
// take its place.
type nopConn struct{ cnx.DBConnection }
