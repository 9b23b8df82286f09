// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lilyblog/internal/models"
	"lilyblog/internal/store"
)

// ChangePasswordInput authorises a password change for admin ID with the
// account's email and current password.
type ChangePasswordInput struct {
	ID          int32
	Email       string
	Password    string
	NewPassword *string
}

// Admins manages admin accounts and their credentials.
type Admins struct {
	store *store.AdminStore
}

// NewAdmins creates the admin service.
func NewAdmins(as *store.AdminStore) *Admins {
	return &Admins{store: as}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin adds an admin account with a bcrypt-hashed password.
func (s *Admins) CreateAdmin(ctx context.Context, email, password string) (int32, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return 0, err
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("admin %q: %w", email, store.ErrAlreadyExists)
	}

	a, err := s.store.Create(ctx, email, password)
	if err != nil {
		return 0, err
	}
	slog.Info("admin created", "id", a.ID, "email", email)
	return a.ID, nil
}

// ListAdmins returns admins whose email contains email, filtered by isDel
// when given.
func (s *Admins) ListAdmins(ctx context.Context, email *string, isDel *bool) ([]models.Admin, error) {
	return s.store.List(ctx, email, isDel)
}

// ChangePassword replaces an admin's password after verifying the current
// one. It reports whether a row was updated.
func (s *Admins) ChangePassword(ctx context.Context, in ChangePasswordInput) (bool, error) {
	a, err := s.store.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return false, err
	}
	if a == nil || a.ID != in.ID {
		return false, invalid("no such admin")
	}
	if !s.store.CheckPassword(a, in.Password) {
		return false, fmt.Errorf("current password is wrong: %w", ErrUnauthenticated)
	}
	if in.NewPassword == nil {
		return false, invalid("new password is required")
	}
	if err := validatePassword(*in.NewPassword); err != nil {
		return false, err
	}

	n, err := s.store.SetPassword(ctx, a.ID, *in.NewPassword)
	if err != nil {
		return false, err
	}
	slog.Info("admin password changed", "id", a.ID)
	return n > 0, nil
}

// ToggleAdmin flips the admin's soft-delete flag and returns the new value.
func (s *Admins) ToggleAdmin(ctx context.Context, id int32) (bool, error) {
	isDel, err := s.store.ToggleDeleted(ctx, id)
	if err != nil {
		return false, err
	}
	slog.Info("admin toggled", "id", id, "is_del", isDel)
	return isDel, nil
}

// AdminExistsByID reports whether an admin with the id exists.
func (s *Admins) AdminExistsByID(ctx context.Context, id int32) (bool, error) {
	return s.store.ExistsByID(ctx, id)
}

// IsActive reports whether admin id exists and is not disabled.
func (s *Admins) IsActive(ctx context.Context, id int32) (bool, error) {
	active := false
	a, err := s.store.FindByID(ctx, id, &active)
	if err != nil {
		return false, err
	}
	return a != nil, nil
}

// AdminExistsByEmail reports whether an admin with the email exists.
func (s *Admins) AdminExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.store.ExistsByEmail(ctx, normalizeEmail(email))
}

// Authenticate returns the active admin matching the credentials. Unknown
// emails, wrong passwords and disabled accounts all fail the same way.
func (s *Admins) Authenticate(ctx context.Context, email, password string) (*models.Admin, error) {
	a, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if a == nil || !s.store.CheckPassword(a, password) || !a.Active() {
		return nil, invalid("wrong email or password")
	}
	return a, nil
}

// GetAdmin returns one admin.
func (s *Admins) GetAdmin(ctx context.Context, id int32, isDel *bool) (*models.Admin, error) {
	a, err := s.store.FindByID(ctx, id, isDel)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("admin %d: %w", id, store.ErrNotFound)
	}
	return a, nil
}
