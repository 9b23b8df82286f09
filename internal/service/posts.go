// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lilyblog/internal/cache"
	"lilyblog/internal/markdown"
	"lilyblog/internal/models"
	"lilyblog/internal/slug"
	"lilyblog/internal/storage"
	"lilyblog/internal/store"
)

// DateRange bounds a listing by publish time, inclusive on both ends. It
// filters only when both bounds are set.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CreatePostInput describes a new post. The source is either Markdown,
// stored under a generated key, or an existing object at ContentPath.
// A nil Summary is derived from the source.
type CreatePostInput struct {
	Title       string
	TagIDs      []int32
	ContentPath string
	Markdown    string
	Summary     *string
}

// EditPostInput replaces the editable fields of post ID.
type EditPostInput struct {
	ID          int32
	Title       string
	TagIDs      []int32
	ContentPath string
	Markdown    string
	Summary     *string
}

// ListPostsInput selects one listing page. Nil fields do not filter; a
// nil Page is page 0.
type ListPostsInput struct {
	Page      *int32
	TagID     *int32
	Keyword   *string
	IsDel     *bool
	DateRange *DateRange
}

// GetPostInput selects a single post. A nil IncHit counts the read.
type GetPostInput struct {
	ID     int32
	IsDel  *bool
	IncHit *bool
}

// Posts publishes, lists and mutates posts.
type Posts struct {
	store   *store.PostStore
	content storage.Backend
	cache   *cache.ListingCache
	now     func() time.Time
}

// NewPosts creates the post service. listing may be nil.
func NewPosts(ps *store.PostStore, content storage.Backend, listing *cache.ListingCache) *Posts {
	return &Posts{store: ps, content: content, cache: listing, now: time.Now}
}

// rendered is what publishing derives from a markdown source. written
// lists the objects this publish created or overwrote.
type rendered struct {
	contentPath  string
	renderedPath string
	summary      string
	wordsLen     int32
	written      []string
}

// publish stores inline markdown when given, renders the source to HTML and
// computes the summary and word length. Inline markdown goes to key, or to
// a fresh generated key when key is empty. On error nothing it wrote is
// left behind.
func (s *Posts) publish(ctx context.Context, title, key, contentPath, source string, summary *string) (*rendered, error) {
	var written []string
	if source != "" {
		contentPath = key
		if contentPath == "" {
			contentPath = slug.MarkdownKey(title, s.now())
		}
		if err := s.content.Put(ctx, contentPath, "text/markdown; charset=utf-8", []byte(source)); err != nil {
			return nil, fmt.Errorf("store markdown: %w", err)
		}
		written = append(written, contentPath)
	} else {
		if strings.TrimSpace(contentPath) == "" {
			return nil, invalid("markdown or content_path is required")
		}
		if _, err := storage.CleanKey(contentPath); err != nil {
			return nil, invalid("content_path %q is not a valid key", contentPath)
		}
		data, err := s.content.Get(ctx, contentPath)
		if errors.Is(err, storage.ErrNotExist) {
			return nil, invalid("content_path %q does not exist", contentPath)
		}
		if err != nil {
			return nil, fmt.Errorf("load markdown: %w", err)
		}
		source = string(data)
	}

	html, err := markdown.ToHTML(source)
	if err != nil {
		s.discard(ctx, written...)
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	renderedPath := slug.HTMLKey(contentPath)
	if err := s.content.Put(ctx, renderedPath, "text/html; charset=utf-8", []byte(html)); err != nil {
		s.discard(ctx, written...)
		return nil, fmt.Errorf("store html: %w", err)
	}
	written = append(written, renderedPath)

	r := &rendered{
		contentPath:  contentPath,
		renderedPath: renderedPath,
		wordsLen:     markdown.WordCount(source),
		written:      written,
	}
	if summary != nil {
		r.summary = *summary
	} else {
		r.summary = markdown.Summary(source)
	}
	return r, nil
}

// discard deletes content objects nothing refers to any more. Failures are
// logged and not returned.
func (s *Posts) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.content.Delete(ctx, key); err != nil {
			slog.Warn("discard content object failed", "key", key, "error", err)
		}
	}
}

// CreatePost publishes a new post and returns its id.
func (s *Posts) CreatePost(ctx context.Context, in CreatePostInput) (int32, error) {
	if err := validatePost(in.Title, in.Summary, in.Markdown); err != nil {
		return 0, err
	}

	r, err := s.publish(ctx, in.Title, "", in.ContentPath, in.Markdown, in.Summary)
	if err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, &models.Post{
		Title:        strings.TrimSpace(in.Title),
		Summary:      r.summary,
		TagIDs:       in.TagIDs,
		ContentPath:  r.contentPath,
		RenderedPath: r.renderedPath,
		WordsLen:     r.wordsLen,
	})
	if err != nil {
		s.discard(ctx, r.written...)
		return 0, err
	}

	s.cache.InvalidateAll(ctx)
	slog.Info("post created", "id", id, "content_path", r.contentPath)
	return id, nil
}

// EditPost republishes post in.ID and returns the number of rows updated,
// 0 when the post does not exist. Inline markdown overwrites the post's
// generated markdown object in place; objects the post stops referring
// to are removed.
func (s *Posts) EditPost(ctx context.Context, in EditPostInput) (int64, error) {
	if err := validatePost(in.Title, in.Summary, in.Markdown); err != nil {
		return 0, err
	}

	cur, err := s.store.Get(ctx, in.ID, nil, false)
	if err != nil {
		return 0, err
	}
	if cur == nil {
		return 0, nil
	}

	var key string
	if in.Markdown != "" && strings.HasPrefix(cur.ContentPath, slug.MarkdownDir) {
		key = cur.ContentPath
	}

	r, err := s.publish(ctx, in.Title, key, in.ContentPath, in.Markdown, in.Summary)
	if err != nil {
		return 0, err
	}

	n, err := s.store.Update(ctx, &models.Post{
		ID:           in.ID,
		Title:        strings.TrimSpace(in.Title),
		Summary:      r.summary,
		TagIDs:       in.TagIDs,
		ContentPath:  r.contentPath,
		RenderedPath: r.renderedPath,
		WordsLen:     r.wordsLen,
	})
	if err != nil {
		return 0, err
	}
	if n == 0 {
		s.discard(ctx, r.written...)
		return 0, nil
	}

	var stale []string
	if cur.RenderedPath != r.renderedPath {
		stale = append(stale, cur.RenderedPath)
	}
	if cur.ContentPath != r.contentPath && strings.HasPrefix(cur.ContentPath, slug.MarkdownDir) {
		stale = append(stale, cur.ContentPath)
	}
	s.discard(ctx, stale...)

	s.cache.InvalidateAll(ctx)
	slog.Info("post edited", "id", in.ID)
	return n, nil
}

// ListPosts serves one page of the filtered listing. Listings of live
// posts are cached when a listing cache is configured.
func (s *Posts) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	var page int32
	if in.Page != nil {
		page = *in.Page
	}

	f := store.PostFilter{TagID: in.TagID, Keyword: in.Keyword, IsDel: in.IsDel}
	if in.DateRange != nil {
		f.Start, f.End = in.DateRange.Start, in.DateRange.End
	}

	var gen int64
	cacheable := in.IsDel != nil && !*in.IsDel
	key := listingKey(f, page)
	if cacheable {
		gen, cacheable = s.cache.Generation(ctx)
	}
	if cacheable {
		if p, ok := s.cache.Get(ctx, gen, key); ok {
			return p, nil
		}
	}

	p, err := s.store.List(ctx, f, page)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cache.Set(ctx, gen, key, p)
	}
	return p, nil
}

// listingKey canonicalises a filter and page into a cache key.
func listingKey(f store.PostFilter, page int32) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d", page)
	if f.TagID != nil {
		fmt.Fprintf(&b, "|t=%d", *f.TagID)
	}
	if f.Keyword != nil {
		fmt.Fprintf(&b, "|k=%q", *f.Keyword)
	}
	if f.IsDel != nil {
		fmt.Fprintf(&b, "|d=%t", *f.IsDel)
	}
	if f.Start != nil && f.End != nil {
		fmt.Fprintf(&b, "|r=%d-%d", f.Start.Unix(), f.End.Unix())
	}
	return b.String()
}

// GetPost returns one post, counting the read unless IncHit is false.
func (s *Posts) GetPost(ctx context.Context, in GetPostInput) (*models.Post, error) {
	incHit := in.IncHit == nil || *in.IncHit

	p, err := s.store.Get(ctx, in.ID, in.IsDel, incHit)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("post %d: %w", in.ID, store.ErrNotFound)
	}
	return p, nil
}

// TogglePostDeleted flips the post's soft-delete flag and returns the id
// with the new value.
func (s *Posts) TogglePostDeleted(ctx context.Context, id int32) (int32, bool, error) {
	isDel, err := s.store.ToggleDeleted(ctx, id)
	if err != nil {
		return id, false, err
	}
	s.cache.InvalidateAll(ctx)
	slog.Info("post toggled", "id", id, "is_del", isDel)
	return id, isDel, nil
}

// Content returns the post's rendered HTML. A missing rendering is
// regenerated from the markdown source.
func (s *Posts) Content(ctx context.Context, p *models.Post) (string, error) {
	data, err := s.content.Get(ctx, p.RenderedPath)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, storage.ErrNotExist) {
		return "", fmt.Errorf("load html: %w", err)
	}

	src, err := s.content.Get(ctx, p.ContentPath)
	if err != nil {
		return "", fmt.Errorf("load markdown: %w", err)
	}
	html, err := markdown.ToHTML(string(src))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if err := s.content.Put(ctx, p.RenderedPath, "text/html; charset=utf-8", []byte(html)); err != nil {
		slog.Warn("re-store rendered post failed", "id", p.ID, "error", err)
	}
	return html, nil
}
