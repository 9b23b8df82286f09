// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"lilyblog/internal/models"
	"lilyblog/internal/service"
)

// Admin groups the authenticated management API. Unlike the public
// gateway it sees soft-deleted rows and never counts reads as hits.
type Admin struct {
	posts    *service.Posts
	tags     *service.Tags
	comments *service.Comments
	admins   *service.Admins
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(posts *service.Posts, tags *service.Tags, comments *service.Comments, admins *service.Admins) *Admin {
	return &Admin{posts: posts, tags: tags, comments: comments, admins: admins}
}

// --- Posts ---

type postRequest struct {
	Title       string  `json:"title"`
	TagIDs      []int32 `json:"tag_ids"`
	ContentPath string  `json:"content_path"`
	Markdown    string  `json:"markdown"`
	Summary     *string `json:"summary"`
}

// PostsList serves one listing page with every filter, including is_del.
func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	in, err := listInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if in.IsDel, err = queryBool(r, "is_del"); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.posts.ListPosts(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageView(page))
}

// PostCreate publishes a new post.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := a.posts.CreatePost(r.Context(), service.CreatePostInput{
		Title:       req.Title,
		TagIDs:      req.TagIDs,
		ContentPath: req.ContentPath,
		Markdown:    req.Markdown,
		Summary:     req.Summary,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int32{"id": id})
}

// PostGet returns a post in any state without counting a hit.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	isDel, err := queryBool(r, "is_del")
	if err != nil {
		writeError(w, r, err)
		return
	}

	noHit := false
	post, err := a.posts.GetPost(r.Context(), service.GetPostInput{ID: id, IsDel: isDel, IncHit: &noHit})
	if err != nil {
		writeError(w, r, err)
		return
	}

	html, err := a.posts.Content(r.Context(), post)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postView{Post: post, Content: html})
}

// PostUpdate republishes an existing post.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := a.posts.EditPost(r.Context(), service.EditPostInput{
		ID:          id,
		Title:       req.Title,
		TagIDs:      req.TagIDs,
		ContentPath: req.ContentPath,
		Markdown:    req.Markdown,
		Summary:     req.Summary,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		writeMessage(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"rows": n})
}

// PostToggle flips a post's soft-delete flag.
func (a *Admin) PostToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, isDel, err := a.posts.TogglePostDeleted(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, IsDel: isDel})
}

type toggleResponse struct {
	ID    int32 `json:"id"`
	IsDel bool  `json:"is_del"`
}

// PostComments lists the visible comments of any post.
func (a *Admin) PostComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	comments, err := a.comments.PostComments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// CommentToggle hides or restores a comment.
func (a *Admin) CommentToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	isDel, err := a.comments.ToggleComment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, IsDel: isDel})
}

// --- Tags ---

type tagRequest struct {
	Name string `json:"name"`
}

// TagsList returns tags by name substring and is_del.
func (a *Admin) TagsList(w http.ResponseWriter, r *http.Request) {
	isDel, err := queryBool(r, "is_del")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tags, err := a.tags.ListTags(r.Context(), queryString(r, "name"), isDel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// TagCreate adds a tag.
func (a *Admin) TagCreate(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := a.tags.CreateTag(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int32{"id": id})
}

// TagUpdate renames a tag.
func (a *Admin) TagUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := a.tags.EditTag(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusNotFound, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// TagToggle flips a tag's soft-delete flag.
func (a *Admin) TagToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	isDel, err := a.tags.ToggleTag(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, IsDel: isDel})
}

// --- Admins ---

type adminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	NewPassword *string `json:"new_password"`
}

// AdminsList returns admin accounts by email substring and is_del.
func (a *Admin) AdminsList(w http.ResponseWriter, r *http.Request) {
	isDel, err := queryBool(r, "is_del")
	if err != nil {
		writeError(w, r, err)
		return
	}

	admins, err := a.admins.ListAdmins(r.Context(), queryString(r, "email"), isDel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if admins == nil {
		admins = []models.Admin{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"admins": admins})
}

// AdminCreate adds an admin account.
func (a *Admin) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := a.admins.CreateAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int32{"id": id})
}

// AdminPassword changes an admin's password given the current one.
func (a *Admin) AdminPassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := a.admins.ChangePassword(r.Context(), service.ChangePasswordInput{
		ID:          id,
		Email:       req.Email,
		Password:    req.Password,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// AdminToggle disables or re-enables an admin account.
func (a *Admin) AdminToggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	isDel, err := a.admins.ToggleAdmin(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ID: id, IsDel: isDel})
}
