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

// Tags manages the tag catalogue.
type Tags struct {
	store *store.TagStore
}

// NewTags creates the tag service.
func NewTags(ts *store.TagStore) *Tags {
	return &Tags{store: ts}
}

// CreateTag adds a tag. Names are unique.
func (s *Tags) CreateTag(ctx context.Context, name string) (int32, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return 0, err
	}

	exists, err := s.store.ExistsByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("tag %q: %w", name, store.ErrAlreadyExists)
	}

	id, err := s.store.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	slog.Info("tag created", "id", id, "name", name)
	return id, nil
}

// EditTag renames a tag. It reports whether a row was updated.
func (s *Tags) EditTag(ctx context.Context, id int32, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return false, err
	}

	exists, err := s.store.ExistsByName(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, fmt.Errorf("tag %q: %w", name, store.ErrAlreadyExists)
	}

	n, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTags returns tags whose name contains name, filtered by isDel when
// given. An empty result is ErrNotFound.
func (s *Tags) ListTags(ctx context.Context, name *string, isDel *bool) ([]models.Tag, error) {
	tags, err := s.store.List(ctx, name, isDel)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("list tags: %w", store.ErrNotFound)
	}
	return tags, nil
}

// GetTag returns one tag.
func (s *Tags) GetTag(ctx context.Context, id int32, isDel *bool) (*models.Tag, error) {
	t, err := s.store.FindByID(ctx, id, isDel)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("tag %d: %w", id, store.ErrNotFound)
	}
	return t, nil
}

// ToggleTag flips the tag's soft-delete flag and returns the new value.
func (s *Tags) ToggleTag(ctx context.Context, id int32) (bool, error) {
	isDel, err := s.store.ToggleDeleted(ctx, id)
	if err != nil {
		return false, err
	}
	slog.Info("tag toggled", "id", id, "is_del", isDel)
	return isDel, nil
}

// TagExistsByID reports whether a tag with the id exists.
func (s *Tags) TagExistsByID(ctx context.Context, id int32) (bool, error) {
	return s.store.ExistsByID(ctx, id)
}

// TagExistsByName reports whether a tag with the name exists.
func (s *Tags) TagExistsByName(ctx context.Context, name string) (bool, error) {
	return s.store.ExistsByName(ctx, strings.TrimSpace(name))
}
