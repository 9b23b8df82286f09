// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lilyblog/internal/session"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	sess := &session.Data{AdminID: 1, Email: "root@lilyblog.local"}

	if got := SessionFromCtx(WithSession(context.Background(), sess)); got != sess {
		t.Errorf("got %+v, want %+v", got, sess)
	}
	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("expected nil session, got %+v", got)
	}
	ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
	if got := SessionFromCtx(ctx); got != nil {
		t.Errorf("expected nil for wrong type, got %+v", got)
	}
}

func TestLoadSession(t *testing.T) {
	store := session.NewStore(nil, false)

	created := httptest.NewRecorder()
	if _, err := store.Create(context.Background(), created, &session.Data{AdminID: 9, Email: "a@b.c"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cookie := created.Result().Cookies()[0]

	var got *session.Data
	handler := LoadSession(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromCtx(r.Context())
	}))

	t.Run("loads session from cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
		req.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if got == nil || got.AdminID != 9 {
			t.Errorf("got %+v, want admin 9", got)
		}
	})

	t.Run("no cookie proceeds without session", func(t *testing.T) {
		got = nil
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/posts", nil))
		if got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})
}

// fakeAdmins answers IsActive from a fixed set.
type fakeAdmins struct {
	active map[int32]bool
	err    error
}

func (f fakeAdmins) IsActive(_ context.Context, id int32) (bool, error) {
	return f.active[id], f.err
}

func TestRequireAdmin(t *testing.T) {
	withSession := func(id int32) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
		return req.WithContext(WithSession(req.Context(), &session.Data{AdminID: id}))
	}
	checker := fakeAdmins{active: map[int32]bool{1: true}}

	tests := []struct {
		name   string
		admins AdminChecker
		req    *http.Request
		want   int
		called bool
	}{
		{"no session", checker, httptest.NewRequest(http.MethodGet, "/admin/posts", nil), http.StatusUnauthorized, false},
		{"active admin", checker, withSession(1), http.StatusOK, true},
		{"disabled admin", checker, withSession(2), http.StatusUnauthorized, false},
		{"checker failure", fakeAdmins{err: errors.New("db down")}, withSession(1), http.StatusInternalServerError, false},
		{"nil checker trusts session", nil, withSession(2), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			rr := httptest.NewRecorder()
			RequireAdmin(tt.admins)(inner).ServeHTTP(rr, tt.req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if *called != tt.called {
				t.Errorf("next called = %v, want %v", *called, tt.called)
			}
		})
	}
}
