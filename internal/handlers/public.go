// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"lilyblog/internal/models"
	"lilyblog/internal/service"
)

// Public groups the read-side gateway used by the blog frontend. It only
// ever sees live posts, and every single-post read counts as a hit.
type Public struct {
	posts    *service.Posts
	tags     *service.Tags
	comments *service.Comments
}

// NewPublic creates a new Public handler group.
func NewPublic(posts *service.Posts, tags *service.Tags, comments *service.Comments) *Public {
	return &Public{posts: posts, tags: tags, comments: comments}
}

// postView is a post together with its rendered body.
type postView struct {
	*models.Post
	Content string `json:"content"`
}

// pageView echoes the page number the client asked for.
func pageView(p *models.PostPage) *models.PostPage {
	out := *p
	out.Page = p.Page + 1
	return &out
}

// listInput parses the listing filters shared by the public and admin APIs.
func listInput(r *http.Request) (service.ListPostsInput, error) {
	var in service.ListPostsInput
	var err error

	if in.Page, err = queryPage(r); err != nil {
		return in, err
	}
	if in.TagID, err = queryInt32(r, "tag_id"); err != nil {
		return in, err
	}
	in.Keyword = queryString(r, "keyword")

	start, err := queryUnix(r, "start")
	if err != nil {
		return in, err
	}
	end, err := queryUnix(r, "end")
	if err != nil {
		return in, err
	}
	if start != nil || end != nil {
		in.DateRange = &service.DateRange{Start: start, End: end}
	}
	return in, nil
}

// ListPosts serves one page of live posts.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	in, err := listInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	live := false
	in.IsDel = &live

	page, err := p.posts.ListPosts(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageView(page))
}

// GetPost returns a live post with its HTML and counts the read.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	live := false
	post, err := p.posts.GetPost(r.Context(), service.GetPostInput{ID: id, IsDel: &live})
	if err != nil {
		writeError(w, r, err)
		return
	}

	html, err := p.posts.Content(r.Context(), post)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postView{Post: post, Content: html})
}

// PostComments lists the visible comments of a live post.
func (p *Public) PostComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	comments, err := p.comments.PostComments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

type createCommentRequest struct {
	PostID      int32  `json:"post_id"`
	Name        string `json:"name"`
	HashedEmail string `json:"hashed_email"`
	Content     string `json:"content"`
}

// CreateComment adds a reader comment.
func (p *Public) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := p.comments.CreateComment(r.Context(), service.CreateCommentInput{
		PostID:      req.PostID,
		Name:        req.Name,
		HashedEmail: req.HashedEmail,
		Content:     req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int32{"id": id})
}

// ListTags returns live tags, optionally filtered by a name substring.
func (p *Public) ListTags(w http.ResponseWriter, r *http.Request) {
	live := false
	tags, err := p.tags.ListTags(r.Context(), queryString(r, "name"), &live)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// GetTag returns one live tag.
func (p *Public) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	live := false
	tag, err := p.tags.GetTag(r.Context(), id, &live)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}
