// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"lilyblog/internal/tagset"
)

// PostFilter holds the optional criteria for listing posts. A nil field
// imposes no constraint. The date range applies only when both Start and End
// are set; a single bound is ignored.
type PostFilter struct {
	TagID   *int32
	Keyword *string
	IsDel   *bool
	Start   *time.Time
	End     *time.Time
}

// Predicate is a conjunctive WHERE clause with its positional arguments.
// Count and FetchPage consume the same value, so "how many" and "which
// ones" always agree.
type Predicate struct {
	clauses []string
	args    []any
}

// and appends one clause. clause contains a single %s where the placeholder
// for arg goes.
func (p *Predicate) and(clause string, arg any) {
	p.args = append(p.args, arg)
	p.clauses = append(p.clauses, fmt.Sprintf(clause, "$"+strconv.Itoa(len(p.args))))
}

// Where renders the clause with a leading space, or "" when empty.
func (p Predicate) Where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// Args returns a copy of the positional arguments.
func (p Predicate) Args() []any {
	return slices.Clone(p.args)
}

// placeholder returns the placeholder for the n-th argument after the
// predicate's own, counting from 1.
func (p Predicate) placeholder(n int) string {
	return "$" + strconv.Itoa(len(p.args)+n)
}

// BuildPostPredicate translates a filter into a predicate over the posts
// table. Tag membership is a substring test on the packed tag_ids column;
// the column is never decoded in SQL.
func BuildPostPredicate(f PostFilter) Predicate {
	var p Predicate
	if f.TagID != nil {
		p.and(`tag_ids LIKE %s ESCAPE '\'`, containsPattern(tagset.Token(*f.TagID)))
	}
	if f.Keyword != nil {
		p.and(`title LIKE %s ESCAPE '\'`, containsPattern(*f.Keyword))
	}
	if f.IsDel != nil {
		p.and("is_del = %s", *f.IsDel)
	}
	if f.Start != nil && f.End != nil {
		p.and("publish_time >= %s", f.Start.UTC())
		p.and("publish_time <= %s", f.End.UTC())
	}
	return p
}
