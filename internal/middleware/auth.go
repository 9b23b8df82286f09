// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"lilyblog/internal/session"
)

type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"

	requestIDKey contextKey = "request_id"
)

// AdminChecker reports whether an admin account may still act. Sessions
// outlive account changes, so every admin request asks again.
type AdminChecker interface {
	IsActive(ctx context.Context, id int32) (bool, error)
}

// LoadSession puts the caller's session, if any, into the request context.
// A failing session backend is logged and treated as no session.
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session load failed", "error", err, "request_id", RequestIDFromCtx(r.Context()))
			}
			if data != nil {
				r = r.WithContext(WithSession(r.Context(), data))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin answers 401 unless the request carries a session whose
// admin is still active. A nil checker trusts the session alone.
func RequireAdmin(admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromCtx(r.Context())
			if sess == nil {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}

			if admins != nil {
				ok, err := admins.IsActive(r.Context(), sess.AdminID)
				if err != nil {
					slog.Error("admin check failed",
						"admin_id", sess.AdminID,
						"error", err,
						"request_id", RequestIDFromCtx(r.Context()),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if !ok {
					slog.Warn("session of inactive admin rejected",
						"admin_id", sess.AdminID,
						"request_id", RequestIDFromCtx(r.Context()),
					)
					writeError(w, http.StatusUnauthorized, "login required")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying data.
func WithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// SessionFromCtx returns the loaded session, or nil for anonymous requests.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}
