// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog backend. It organizes routes into the public gateway and the admin
// API with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lilyblog/internal/handlers"
	"lilyblog/internal/middleware"
	"lilyblog/internal/session"
)

// Deps bundles what the router needs beyond the handler groups.
type Deps struct {
	Sessions      *session.Store
	Admins        middleware.AdminChecker
	SecureCookies bool
	Limits        Limits
}

// Limits holds the rate limiters for abuse-prone endpoints. A nil limiter
// leaves its endpoint unlimited.
type Limits struct {
	Login    *middleware.RateLimiter
	Comments *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(deps Deps, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	limits := deps.Limits

	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(deps.SecureCookies))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public gateway.
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", public.ListPosts)
		r.Get("/posts/{id}", public.GetPost)
		r.Get("/posts/{id}/comments", public.PostComments)
		r.With(limit(limits.Comments)).Post("/comments", public.CreateComment)
		r.Get("/tags", public.ListTags)
		r.Get("/tags/{id}", public.GetTag)
	})

	// Admin API: session cookie plus CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.LoadSession(deps.Sessions))
		r.Use(middleware.NewCSRF(deps.SecureCookies))

		r.With(limit(limits.Login)).Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Admins))

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", admin.PostsList)
				r.Post("/", admin.PostCreate)
				r.Get("/{id}", admin.PostGet)
				r.Put("/{id}", admin.PostUpdate)
				r.Post("/{id}/toggle", admin.PostToggle)
				r.Get("/{id}/comments", admin.PostComments)
			})

			r.Post("/comments/{id}/toggle", admin.CommentToggle)

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", admin.TagsList)
				r.Post("/", admin.TagCreate)
				r.Put("/{id}", admin.TagUpdate)
				r.Post("/{id}/toggle", admin.TagToggle)
			})

			r.Route("/admins", func(r chi.Router) {
				r.Get("/", admin.AdminsList)
				r.Post("/", admin.AdminCreate)
				r.Put("/{id}/password", admin.AdminPassword)
				r.Post("/{id}/toggle", admin.AdminToggle)
			})
		})
	})

	return r
}

// limit wraps a route in rl, or passes it through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
