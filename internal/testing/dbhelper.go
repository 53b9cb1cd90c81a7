// Package testing holds helpers shared by integration tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/cnxpopulate/internal/testinfra"
)

// TestConnEnv names the variable that points tests at an existing server.
const TestConnEnv = "CNX_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: CNX_TEST_CONN > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// IsolatedConnString creates a schema private to the test and returns a
// connection string whose search_path points at it. The schema is dropped
// on cleanup, so tests sharing one server do not see each other's archives.
func IsolatedConnString(t *testing.T) string {
	t.Helper()

	connString := RequireDatabase(t)
	ctx := context.Background()
	schema := "cnx_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	admin, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test server: %v", err)
	}
	defer admin.Close()
	if _, err := admin.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		cleanup, err := pgxpool.New(context.Background(), connString)
		if err != nil {
			t.Logf("Warning: Failed to connect for cleanup: %v", err)
			return
		}
		defer cleanup.Close()
		if _, err := cleanup.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", schema, err)
		}
	})

	sep := "?"
	if strings.Contains(connString, "?") {
		sep = "&"
	}
	return connString + sep + "search_path=" + schema
}

// NewIsolatedPool returns a pool on a fresh schema from IsolatedConnString.
// The pool is closed before the schema is dropped.
func NewIsolatedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), IsolatedConnString(t))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
