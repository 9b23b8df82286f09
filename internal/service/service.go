// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service implements the blog's use cases on top of the stores:
// post publishing and querying, tags, comments and admin accounts. Errors
// wrap the store sentinels (store.ErrNotFound, store.ErrAlreadyExists,
// store.ErrInvalidArgument) plus ErrUnauthenticated, so the HTTP layer can
// map them with errors.Is.
package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"lilyblog/internal/store"
)

// ErrUnauthenticated means a credential check failed.
var ErrUnauthenticated = errors.New("unauthenticated")

// Input limits.
const (
	maxTitleLen    = 300
	maxSummaryLen  = 1_000
	maxMarkdownLen = 500_000
	maxTagNameLen  = 64
	maxNameLen     = 64
	maxCommentLen  = 5_000
	maxEmailLen    = 254
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores bytes beyond 72
)

// invalid builds an ErrInvalidArgument with a user-facing reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// validatePost checks post inputs and returns the first problem found.
func validatePost(title string, summary *string, markdown string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return invalid("title is too long (max %d characters)", maxTitleLen)
	}
	if summary != nil && utf8.RuneCountInString(*summary) > maxSummaryLen {
		return invalid("summary is too long (max %d characters)", maxSummaryLen)
	}
	if utf8.RuneCountInString(markdown) > maxMarkdownLen {
		return invalid("markdown is too long (max %d characters)", maxMarkdownLen)
	}
	return nil
}

// validateTagName checks a tag name.
func validateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("tag name is required")
	}
	if utf8.RuneCountInString(name) > maxTagNameLen {
		return invalid("tag name is too long (max %d characters)", maxTagNameLen)
	}
	return nil
}

// validateComment checks comment inputs. hashedEmail is the hex digest the
// client computes for avatar lookup.
func validateComment(name, hashedEmail, content string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return invalid("name is too long (max %d characters)", maxNameLen)
	}
	if !isHexDigest(hashedEmail) {
		return invalid("hashed_email must be a hex digest")
	}
	if strings.TrimSpace(content) == "" {
		return invalid("content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return invalid("content is too long (max %d characters)", maxCommentLen)
	}
	return nil
}

func isHexDigest(s string) bool {
	if len(s) != 32 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// validateCredentials checks an email/password pair for a new account.
func validateCredentials(email, password string) error {
	if len(email) > maxEmailLen || strings.Count(email, "@") != 1 ||
		strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return invalid("a valid email is required")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return invalid("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}
