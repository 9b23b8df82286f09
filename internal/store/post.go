// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"lilyblog/internal/models"
	"lilyblog/internal/tagset"
)

// PageSize is the fixed number of posts per listing page.
const PageSize int32 = 10

const postColumns = `id, title, summary, tag_ids, content_path, rendered_path,
	hit, words_len, is_del, publish_time, update_time`

// PostStore handles all post-related database operations: inserts and
// edits, the filtered and paginated listing, and the single-row hit and
// soft-delete mutations.
type PostStore struct {
	db         *sql.DB
	emptyPages bool
}

// PostOption configures a PostStore.
type PostOption func(*PostStore)

// WithEmptyPages makes List return an empty page instead of ErrNotFound
// when no rows land on the requested page.
func WithEmptyPages(ok bool) PostOption {
	return func(s *PostStore) { s.emptyPages = ok }
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB, opts ...PostOption) *PostStore {
	s := &PostStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func scanPost(row rowScanner) (*models.Post, error) {
	p := &models.Post{}
	var tags string
	if err := row.Scan(
		&p.ID, &p.Title, &p.Summary, &tags, &p.ContentPath, &p.RenderedPath,
		&p.Hit, &p.WordsLen, &p.IsDel, &p.PublishTime, &p.UpdateTime,
	); err != nil {
		return nil, err
	}
	p.TagIDs = tagset.Decode([]byte(tags))
	return p, nil
}

// now is the store's clock: UTC at second precision, so every stored
// timestamp compares consistently on both dialects.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Create inserts a new post and returns its id. Hit starts at 0, IsDel at
// false and UpdateTime at NULL. PublishTime defaults to now when zero.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (int32, error) {
	publish := p.PublishTime
	if publish.IsZero() {
		publish = now()
	}

	var id int32
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, summary, tag_ids, content_path, rendered_path, words_len, publish_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.Title, p.Summary, string(tagset.Encode(p.TagIDs)), p.ContentPath, p.RenderedPath,
		p.WordsLen, publish.UTC().Truncate(time.Second),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

// Update rewrites the editable fields of a post and stamps UpdateTime.
// It returns the number of rows affected (0 when the id does not exist).
func (s *PostStore) Update(ctx context.Context, p *models.Post) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			title = $1, summary = $2, tag_ids = $3, content_path = $4,
			rendered_path = $5, words_len = $6, update_time = $7
		WHERE id = $8
	`, p.Title, p.Summary, string(tagset.Encode(p.TagIDs)), p.ContentPath,
		p.RenderedPath, p.WordsLen, now(), p.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update post rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of posts matching pred.
func (s *PostStore) Count(ctx context.Context, pred Predicate) (uint64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+pred.Where(), pred.Args()...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return uint64(n), nil
}

// FetchPage returns up to pageSize posts matching pred, newest id first,
// after skipping pageIndex*pageSize rows.
func (s *PostStore) FetchPage(ctx context.Context, pred Predicate, pageSize, pageIndex int32) ([]models.Post, error) {
	if pageSize <= 0 || pageIndex < 0 {
		return nil, fmt.Errorf("fetch posts: page %d size %d: %w", pageIndex, pageSize, ErrInvalidArgument)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + pred.Where() +
		` ORDER BY id DESC LIMIT ` + pred.placeholder(1) + ` OFFSET ` + pred.placeholder(2)
	args := append(pred.Args(), pageSize, int64(pageIndex)*int64(pageSize))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// List serves one page of the filtered listing. An empty page is
// ErrNotFound unless the store was built WithEmptyPages(true).
func (s *PostStore) List(ctx context.Context, f PostFilter, page int32) (*models.PostPage, error) {
	if page < 0 {
		return nil, fmt.Errorf("list posts: page %d: %w", page, ErrInvalidArgument)
	}

	pred := BuildPostPredicate(f)

	total, err := s.Count(ctx, pred)
	if err != nil {
		return nil, err
	}

	items, err := s.FetchPage(ctx, pred, PageSize, page)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		if !s.emptyPages {
			return nil, fmt.Errorf("list posts: page %d: %w", page, ErrNotFound)
		}
		items = []models.Post{}
	}

	return &models.PostPage{
		Page:      page,
		PageTotal: PageTotal(total, PageSize),
		Items:     items,
	}, nil
}

// PageTotal is ceil(total / pageSize) computed in real arithmetic.
func PageTotal(total uint64, pageSize int32) int32 {
	return int32(math.Ceil(float64(total) / float64(pageSize)))
}

// Get returns the post with the given id, optionally also requiring its
// soft-delete flag to equal isDel. When incHit is set the hit counter is
// bumped in the same statement and the post-increment row is returned.
// Returns nil if no row matches.
func (s *PostStore) Get(ctx context.Context, id int32, isDel *bool, incHit bool) (*models.Post, error) {
	var pred Predicate
	pred.and("id = %s", id)
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + pred.Where()
	if incHit {
		query = `UPDATE posts SET hit = hit + 1` + pred.Where() + ` RETURNING ` + postColumns
	}

	p, err := scanPost(s.db.QueryRowContext(ctx, query, pred.Args()...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ToggleDeleted flips the soft-delete flag in one statement and returns
// the new value. Returns ErrNotFound if no post has the id.
func (s *PostStore) ToggleDeleted(ctx context.Context, id int32) (bool, error) {
	var isDel bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts SET is_del = NOT is_del WHERE id = $1 RETURNING is_del
	`, id).Scan(&isDel)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("toggle post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggle post: %w", err)
	}
	return isDel, nil
}

// Exists reports whether a post with the id exists and, when isDel is
// given, has that soft-delete flag.
func (s *PostStore) Exists(ctx context.Context, id int32, isDel *bool) (bool, error) {
	var pred Predicate
	pred.and("id = %s", id)
	if isDel != nil {
		pred.and("is_del = %s", *isDel)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+pred.Where(), pred.Args()...).Scan(&n); err != nil {
		return false, fmt.Errorf("post exists: %w", err)
	}
	return n > 0, nil
}
