// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SeedData is the starter content for a development database.
type SeedData struct {
	AdminEmail    string
	AdminPassword string
	Tags          []string
}

// Seed writes the development admin and starter tags in one transaction.
// The admin is only created on a database without admins; tags that
// already exist are left alone, so Seed can run on every start.
func Seed(ctx context.Context, db *sql.DB, data SeedData) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	created, err := seedAdmin(ctx, tx, data.AdminEmail, data.AdminPassword)
	if err != nil {
		return err
	}

	var tags int64
	for _, name := range data.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
		n, _ := res.RowsAffected()
		tags += n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded", "admin_created", created, "tags_created", tags)
	return nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admins)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("seed check admins: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("seed bcrypt: %w", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO admins (email, password_hash) VALUES ($1, $2)`, email, string(hash)); err != nil {
		return false, fmt.Errorf("seed insert admin: %w", err)
	}
	return true, nil
}
