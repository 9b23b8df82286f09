// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
)

const (
	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "lily_csrf"

	// CSRFHeaderName is the header clients echo the token in.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
)

// NewCSRF protects cookie-authenticated routes with a double-submit token.
// Each client gets a script-readable token cookie; unsafe methods must
// echo it in X-CSRF-Token and, when the browser names an Origin, come from
// this host.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					slog.Error("csrf token generation failed", "error", err)
					writeError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !sameOrigin(r) {
				slog.Warn("cross-origin request rejected",
					"origin", r.Header.Get("Origin"),
					"path", r.URL.Path,
					"request_id", RequestIDFromCtx(r.Context()),
				)
				writeError(w, http.StatusForbidden, "cross-origin request")
				return
			}

			sent := r.Header.Get(CSRFHeaderName)
			if sent == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sent)) != 1 {
				writeError(w, http.StatusForbidden, "csrf token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// sameOrigin accepts requests without an Origin header (non-browser
// clients) and those whose Origin host is the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
