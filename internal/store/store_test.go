// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared database helpers for the store tests.
// testDB gives every test its own SQLite file; testPostgresDB is skipped when
// PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/pressly/goose/v3"

	"lilyblog/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDSN returns the PostgreSQL connection string for testing.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "lilyblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "lilyblog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable&connect_timeout=2"
}

// testDB opens a migrated SQLite database in a temp dir.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.DriverSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "store.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testPostgresDB opens the shared PostgreSQL test database and runs
// migrations, or skips the test when it is unreachable.
func testPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db, database.DriverPostgres); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanPostsByTitle removes posts (and their comments) whose title contains
// marker. Call in t.Cleanup() for tests sharing the PostgreSQL database.
func cleanPostsByTitle(t *testing.T, db *sql.DB, marker string) {
	t.Helper()
	db.Exec(`DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE title LIKE $1)`, "%"+marker+"%")
	db.Exec(`DELETE FROM posts WHERE title LIKE $1`, "%"+marker+"%")
}

func ptr[T any](v T) *T {
	return &v
}
