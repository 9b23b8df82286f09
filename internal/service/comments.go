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

// CreateCommentInput is a reader's comment on a post.
type CreateCommentInput struct {
	PostID      int32
	Name        string
	HashedEmail string
	Content     string
}

// Comments manages reader comments.
type Comments struct {
	comments *store.CommentStore
	posts    *store.PostStore
}

// NewComments creates the comment service.
func NewComments(cs *store.CommentStore, ps *store.PostStore) *Comments {
	return &Comments{comments: cs, posts: ps}
}

// CreateComment adds a comment to a live post.
func (s *Comments) CreateComment(ctx context.Context, in CreateCommentInput) (int32, error) {
	in.HashedEmail = strings.ToLower(strings.TrimSpace(in.HashedEmail))
	if err := validateComment(in.Name, in.HashedEmail, in.Content); err != nil {
		return 0, err
	}

	live := false
	ok, err := s.posts.Exists(ctx, in.PostID, &live)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("post %d: %w", in.PostID, store.ErrNotFound)
	}

	id, err := s.comments.Create(ctx, &models.Comment{
		PostID:      in.PostID,
		Name:        strings.TrimSpace(in.Name),
		HashedEmail: in.HashedEmail,
		Content:     in.Content,
	})
	if err != nil {
		return 0, err
	}
	slog.Info("comment created", "id", id, "post_id", in.PostID)
	return id, nil
}

// PostComments returns the visible comments on a post, oldest first.
func (s *Comments) PostComments(ctx context.Context, postID int32) ([]models.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// ToggleComment flips the comment's soft-delete flag and returns the new
// value.
func (s *Comments) ToggleComment(ctx context.Context, id int32) (bool, error) {
	isDel, err := s.comments.ToggleDeleted(ctx, id)
	if err != nil {
		return false, err
	}
	slog.Info("comment toggled", "id", id, "is_del", isDel)
	return isDel, nil
}
