// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all blog entities.
// Each store struct wraps a *sql.DB and exposes typed query methods. SQL is
// written once for both PostgreSQL and SQLite: $N placeholders, LIKE with an
// explicit ESCAPE, and UPDATE ... RETURNING for single-statement mutations.
package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means no row matched an id-keyed operation, or a listing
	// page came back empty.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means a unique name or email is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument means the caller passed a combination the store
	// cannot execute, such as a negative page index.
	ErrInvalidArgument = errors.New("invalid argument")
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere in a column.
// Pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
