// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns post titles into storage-safe names and builds the
// content keys a post's markdown and rendered HTML are stored under.
package slug

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// MaxLen caps a slug in runes.
const MaxLen = 80

// fallback names content whose title has no letters or digits.
const fallback = "post"

// MarkdownDir prefixes every generated markdown key.
const MarkdownDir = "md/"

// Generate lowercases s and joins its runs of letters and digits with single
// hyphens. Letters of any script are kept; apostrophes vanish without a
// break. Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	var b strings.Builder
	n := 0
	pending := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if n == MaxLen {
				return b.String()
			}
			if pending && n > 0 {
				if n+1 == MaxLen {
					return b.String()
				}
				b.WriteByte('-')
				n++
			}
			pending = false
			b.WriteRune(r)
			n++
		default:
			pending = true
		}
	}
	return b.String()
}

func orFallback(s string) string {
	if s == "" {
		return fallback
	}
	return s
}

// MarkdownKey names inline markdown published at the given time.
func MarkdownKey(title string, at time.Time) string {
	return fmt.Sprintf("%s%s-%d.md", MarkdownDir, orFallback(Generate(title)), at.Unix())
}

// HTMLKey names the rendering of the markdown stored at contentPath, after
// the slug of its file stem.
func HTMLKey(contentPath string) string {
	stem := strings.TrimSuffix(path.Base(contentPath), path.Ext(contentPath))
	return "html/" + orFallback(Generate(stem)) + ".html"
}
