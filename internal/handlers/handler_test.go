// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pressly/goose/v3"

	"lilyblog/internal/database"
	"lilyblog/internal/service"
	"lilyblog/internal/session"
	"lilyblog/internal/storage"
	"lilyblog/internal/store"
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB       *sql.DB
	Sessions *session.Store
	Posts    *service.Posts
	Tags     *service.Tags
	Comments *service.Comments
	Admins   *service.Admins
	Public   *Public
	Admin    *Admin
	Auth     *Auth
}

// newTestEnv wires every handler group to a fresh SQLite database, a
// temp-dir content backend and in-memory sessions.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Connect(database.DriverSQLite, database.SQLiteDSN(filepath.Join(dir, "blog.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	content, err := storage.NewDir(filepath.Join(dir, "content"))
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	ps := store.NewPostStore(db)
	posts := service.NewPosts(ps, content, nil)
	tags := service.NewTags(store.NewTagStore(db))
	comments := service.NewComments(store.NewCommentStore(db), ps)
	admins := service.NewAdmins(store.NewAdminStore(db))
	sessions := session.NewStore(nil, false)

	return &testEnv{
		DB:       db,
		Sessions: sessions,
		Posts:    posts,
		Tags:     tags,
		Comments: comments,
		Admins:   admins,
		Public:   NewPublic(posts, tags, comments),
		Admin:    NewAdmin(posts, tags, comments, admins),
		Auth:     NewAuth(admins, sessions),
	}
}

// createPost publishes a post through the service and returns its id.
func (e *testEnv) createPost(t *testing.T, title string, tagIDs ...int32) int32 {
	t.Helper()
	id, err := e.Posts.CreatePost(context.Background(), service.CreatePostInput{
		Title:    title,
		TagIDs:   tagIDs,
		Markdown: "# " + title + "\n\nBody of " + title + ".",
	})
	if err != nil {
		t.Fatalf("CreatePost(%q): %v", title, err)
	}
	return id
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withID is withChiURLParam for the {id} parameter.
func withID(r *http.Request, id int32) *http.Request {
	return withChiURLParam(r, "id", fmt.Sprint(id))
}

// jsonRequest builds a request with body encoded as JSON.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("post 1: %w", store.ErrNotFound), http.StatusNotFound},
		{"invalid", fmt.Errorf("%w: title is required", store.ErrInvalidArgument), http.StatusBadRequest},
		{"exists", fmt.Errorf("tag %q: %w", "go", store.ErrAlreadyExists), http.StatusConflict},
		{"unauthenticated", fmt.Errorf("current password is wrong: %w", service.ErrUnauthenticated), http.StatusUnauthorized},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			writeError(rec, req, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["message"] == "" {
				t.Error("expected a message in the error body")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	writeError(rec, req, errors.New("pq: password authentication failed"))

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] != "internal server error" {
		t.Errorf("message = %q, want generic message", body["message"])
	}
}

func TestQueryPage(t *testing.T) {
	tests := []struct {
		query   string
		want    *int32
		wantErr bool
	}{
		{"", nil, false},
		{"page=1", ptr(int32(0)), false},
		{"page=3", ptr(int32(2)), false},
		{"page=0", nil, true},
		{"page=-2", nil, true},
		{"page=abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts?"+tt.query, nil)
			got, err := queryPage(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, store.ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("page = %d, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("page = %v, want %d", got, *tt.want)
			}
		})
	}
}

func TestQueryUnix(t *testing.T) {
	tests := []struct {
		query   string
		want    int64
		wantErr bool
	}{
		{"start=0", 0, false},
		{"start=1700000000", 1700000000, false},
		{"start=253402300799", 253402300799, false},
		{"start=253402300800", 0, true},
		{"start=99999999999999", 0, true},
		{"start=-1", 0, true},
		{"start=soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts?"+tt.query, nil)
			got, err := queryUnix(req, "start")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, store.ErrInvalidArgument) {
					t.Errorf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if got == nil || got.Unix() != tt.want || got.Location() != time.UTC {
				t.Errorf("time = %v, want unix %d in UTC", got, tt.want)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	if got, err := queryUnix(req, "start"); got != nil || err != nil {
		t.Errorf("absent parameter = %v, %v; want nil, nil", got, err)
	}
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"ratio": math.Inf(1)})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(logs.String(), "response encode failed") {
		t.Errorf("encode failure not logged: %q", logs.String())
	}
}

func TestQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tags?name=", nil)
	if got := queryString(req, "name"); got == nil || *got != "" {
		t.Errorf("present empty parameter = %v, want empty string", got)
	}
	if got := queryString(req, "other"); got != nil {
		t.Errorf("absent parameter = %q, want nil", *got)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"go","extra":1}`))
	rec := httptest.NewRecorder()

	var dst tagRequest
	err := decodeJSON(rec, req, &dst)
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPathID(t *testing.T) {
	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	id, err := pathID(req)
	if err != nil || id != 42 {
		t.Errorf("pathID = %d, %v; want 42", id, err)
	}

	req = withChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "x")
	if _, err := pathID(req); !errors.Is(err, store.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
