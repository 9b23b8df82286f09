// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lilyblog/internal/models"
)

// TagStore handles all tag-related database operations.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Create inserts a tag and returns its id.
func (s *TagStore) Create(ctx context.Context, name string) (int32, error) {
	var id int32
	err := s.db.QueryRowContext(ctx, `INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create tag: %w", err)
	}
	return id, nil
}

// Rename changes a tag's name and returns the number of rows affected.
func (s *TagStore) Rename(ctx context.Context, id int32, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tags SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return 0, fmt.Errorf("rename tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rename tag rows affected: %w", err)
	}
	return n, nil
}

// List returns tags whose name contains name (all tags when nil) and whose
// soft-delete flag equals isDel when given, ordered by id.
func (s *TagStore) List(ctx context.Context, name *string, isDel *bool) ([]models.Tag, error) {
	var pred Predicate
	if name != nil {
		pred.and(`name LIKE %s ESCAPE '\'`, containsPattern(*name))
	}
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, is_del FROM tags`+pred.Where()+` ORDER BY id`, pred.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.IsDel); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// FindByID retrieves a tag, optionally requiring its soft-delete flag to
// equal isDel. Returns nil if not found.
func (s *TagStore) FindByID(ctx context.Context, id int32, isDel *bool) (*models.Tag, error) {
	var pred Predicate
	pred.and("id = %s", id)
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	t := &models.Tag{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name, is_del FROM tags`+pred.Where(), pred.Args()...).
		Scan(&t.ID, &t.Name, &t.IsDel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return t, nil
}

// ExistsByID reports whether a tag with the id exists.
func (s *TagStore) ExistsByID(ctx context.Context, id int32) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE id = $1`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("tag exists by id: %w", err)
	}
	return n > 0, nil
}

// ExistsByName reports whether a tag with exactly this name exists.
func (s *TagStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE name = $1`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("tag exists by name: %w", err)
	}
	return n > 0, nil
}

// ToggleDeleted flips the tag's soft-delete flag and returns the new value.
// Returns ErrNotFound if no tag has the id.
func (s *TagStore) ToggleDeleted(ctx context.Context, id int32) (bool, error) {
	var isDel bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE tags SET is_del = NOT is_del WHERE id = $1 RETURNING is_del
	`, id).Scan(&isDel)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("toggle tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggle tag: %w", err)
	}
	return isDel, nil
}
