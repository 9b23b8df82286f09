// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns post sources into the HTML served to readers and
// derives the plain-text facts stored alongside each post: the listing
// summary and the word length.
package markdown

import (
	"bufio"
	"bytes"
	"strings"
	"unicode/utf8"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// SummaryLen is the maximum length, in runes, of a derived summary.
const SummaryLen = 200

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // posts are authored by admins only
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// markup lists the characters dropped by Clean: Markdown syntax plus
// all spacing.
const markup = "*#_>[]()`!&|-+= \n\r"

// Clean strips Markdown punctuation and whitespace from text.
func Clean(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(markup, r) {
			return -1
		}
		return r
	}, text)
}

// WordCount is the length, in runes, of the cleaned source.
func WordCount(source string) int32 {
	return int32(utf8.RuneCountInString(Clean(source)))
}

// Summary builds a listing summary from the first SummaryLen runes of the
// source. Lines are cleaned individually and joined with single spaces;
// lines that clean to nothing are skipped.
func Summary(source string) string {
	var (
		b     strings.Builder
		runes int
	)
	sc := bufio.NewScanner(strings.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), len(source)+1)
	for sc.Scan() {
		line := Clean(sc.Text())
		if line == "" {
			continue
		}
		if runes > 0 {
			if runes+1 > SummaryLen {
				break
			}
			b.WriteByte(' ')
			runes++
		}
		for _, r := range line {
			if runes == SummaryLen {
				return b.String()
			}
			b.WriteRune(r)
			runes++
		}
	}
	return b.String()
}
