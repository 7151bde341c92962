// Package dbtest starts a throwaway PostgreSQL for integration tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const image = "postgres:17.6-alpine3.22"

// Setup starts a container, applies every *.up.sql in migrationsDir in name
// order and returns an open pool. Both are released when the test ends.
func Setup(t testing.TB, migrationsDir string) *sql.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test needs docker")
	}

	ctx := context.Background()

	scripts, err := upMigrations(migrationsDir)
	if err != nil {
		t.Fatalf("Find migrations: %v", err)
	}

	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase("goshop"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(scripts...),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("Start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Get connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Connect to database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Close database: %v", err)
		}
	})

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Ping database: %v", err)
	}

	return db
}

func upMigrations(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Truncate empties the given tables and resets their sequences.
func Truncate(t testing.TB, db *sql.DB, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", table)); err != nil {
			t.Fatalf("Truncate %s: %v", table, err)
		}
	}
}
