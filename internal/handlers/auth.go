// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"lilyblog/internal/middleware"
	"lilyblog/internal/service"
	"lilyblog/internal/session"
)

// Auth groups the admin login and logout handlers.
type Auth struct {
	admins   *service.Admins
	sessions *session.Store
}

// NewAuth creates a new Auth handler group.
func NewAuth(admins *service.Admins, sessions *session.Store) *Auth {
	return &Auth{admins: admins, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := a.admins.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login failed", "email", req.Email, "request_id", middleware.RequestIDFromCtx(r.Context()))
		writeError(w, r, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		AdminID: admin.ID,
		Email:   admin.Email,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("admin logged in", "id", admin.ID)
	writeJSON(w, http.StatusOK, admin)
}

// Logout destroys the session if there is one.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("logout failed", "error", err)
	}
	writeMessage(w, http.StatusOK, "logged out")
}
