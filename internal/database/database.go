// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles connection management and migration execution
// using goose. PostgreSQL (through pgx) is the production store; SQLite
// (modernc, pure Go) serves local development and the test suites. Both
// share one schema, kept in a migrations directory per dialect.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// Driver names a supported SQL backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver validates a driver name from configuration.
func ParseDriver(name string) (Driver, error) {
	switch Driver(name) {
	case DriverPostgres, DriverSQLite:
		return Driver(name), nil
	}
	return "", fmt.Errorf("unknown database driver %q", name)
}

// sqlName is the database/sql driver registered for d.
func (d Driver) sqlName() string {
	if d == DriverSQLite {
		return "sqlite"
	}
	return "pgx"
}

// gooseDialect is the goose dialect for d.
func (d Driver) gooseDialect() string {
	if d == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// SQLiteDSN builds a modernc DSN for a database file. Writers wait on a busy
// timeout instead of failing, and times are written in a sortable text form
// so publish_time range comparisons work on the stored strings.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

// Connect opens a connection pool for the given driver and DSN.
// It verifies the connection with a ping before returning.
func Connect(driver Driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver.sqlName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite allows one writer; a single connection serialises writes
		// instead of surfacing SQLITE_BUSY to callers.
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", string(driver))
	return db, nil
}

// Migrate runs all pending goose migrations for the driver from the embedded
// SQL files. Migrations are embedded at compile time so no external files are
// needed at runtime.
func Migrate(db *sql.DB, driver Driver) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(driver.gooseDialect()); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+string(driver)); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "driver", string(driver))
	return nil
}
