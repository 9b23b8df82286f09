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

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a comment and returns its id.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (int32, error) {
	var id int32
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, name, hashed_email, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.PostID, c.Name, c.HashedEmail, c.Content, now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}
	return id, nil
}

// ListByPost returns the visible (not soft-deleted) comments on a post,
// oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID int32) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, name, hashed_email, content, is_del, created_at
		FROM comments
		WHERE post_id = $1 AND is_del = $2
		ORDER BY id
	`, postID, false)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.HashedEmail, &c.Content, &c.IsDel, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ToggleDeleted flips the comment's soft-delete flag and returns the new
// value. Returns ErrNotFound if no comment has the id.
func (s *CommentStore) ToggleDeleted(ctx context.Context, id int32) (bool, error) {
	var isDel bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE comments SET is_del = NOT is_del WHERE id = $1 RETURNING is_del
	`, id).Scan(&isDel)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("toggle comment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggle comment: %w", err)
	}
	return isDel, nil
}
