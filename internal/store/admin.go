// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"lilyblog/internal/models"
)

// AdminStore handles all admin-account database operations.
type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore with the given database connection.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// Create inserts a new admin with a bcrypt-hashed password.
func (s *AdminStore) Create(ctx context.Context, email, password string) (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Admin{}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, is_del
	`, email, string(hash)).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsDel)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// FindByEmail retrieves an admin by email. Returns nil if not found.
func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	a := &models.Admin{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, is_del FROM admins WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsDel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by email: %w", err)
	}
	return a, nil
}

// FindByID retrieves an admin by id, optionally requiring its soft-delete
// flag to equal isDel. Returns nil if not found.
func (s *AdminStore) FindByID(ctx context.Context, id int32, isDel *bool) (*models.Admin, error) {
	var pred Predicate
	pred.and("id = %s", id)
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	a := &models.Admin{}
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password_hash, is_del FROM admins`+pred.Where(), pred.Args()...).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsDel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return a, nil
}

// List returns admins whose email contains email (all when nil) and whose
// soft-delete flag equals isDel when given, ordered by id.
func (s *AdminStore) List(ctx context.Context, email *string, isDel *bool) ([]models.Admin, error) {
	var pred Predicate
	if email != nil {
		pred.and(`email LIKE %s ESCAPE '\'`, containsPattern(*email))
	}
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, email, password_hash, is_del FROM admins`+pred.Where()+` ORDER BY id`, pred.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := []models.Admin{}
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsDel); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// SetPassword replaces the admin's password hash and returns the number of
// rows affected.
func (s *AdminStore) SetPassword(ctx context.Context, id int32, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE admins SET password_hash = $1 WHERE id = $2`, string(hash), id)
	if err != nil {
		return 0, fmt.Errorf("set admin password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set admin password rows affected: %w", err)
	}
	return n, nil
}

// ExistsByEmail reports whether an admin with the email exists.
func (s *AdminStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE email = $1`, email).Scan(&n); err != nil {
		return false, fmt.Errorf("admin exists by email: %w", err)
	}
	return n > 0, nil
}

// ExistsByID reports whether an admin with the id exists.
func (s *AdminStore) ExistsByID(ctx context.Context, id int32) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE id = $1`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("admin exists by id: %w", err)
	}
	return n > 0, nil
}

// ToggleDeleted flips the admin's soft-delete flag and returns the new
// value. Returns ErrNotFound if no admin has the id.
func (s *AdminStore) ToggleDeleted(ctx context.Context, id int32) (bool, error) {
	var isDel bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE admins SET is_del = NOT is_del WHERE id = $1 RETURNING is_del
	`, id).Scan(&isDel)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("toggle admin %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggle admin: %w", err)
	}
	return isDel, nil
}

// CheckPassword verifies a plaintext password against the admin's stored hash.
func (s *AdminStore) CheckPassword(a *models.Admin, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
