// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the values returned by the post query engine.
package models

import "time"

// Post is a blog article. TagIDs is stored packed in a single column (see
// package tagset); ContentPath and RenderedPath are keys into content storage.
type Post struct {
	ID           int32      `json:"id"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary"`
	TagIDs       []int32    `json:"tag_ids"`
	ContentPath  string     `json:"content_path"`
	RenderedPath string     `json:"rendered_path"`
	Hit          int32      `json:"hit"`
	WordsLen     int32      `json:"words_len"`
	IsDel        bool       `json:"is_del"`
	PublishTime  time.Time  `json:"publish_time"`
	UpdateTime   *time.Time `json:"update_time,omitempty"`
}

// PostPage is one page of a post listing. Page is the zero-based index that
// was served; PageTotal is ceil(matching rows / page size).
type PostPage struct {
	Page      int32  `json:"page"`
	PageTotal int32  `json:"page_total"`
	Items     []Post `json:"posts"`
}
