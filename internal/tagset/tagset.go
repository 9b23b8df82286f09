// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tagset packs a post's tag ids into the single text column used by
// the posts table. Every id is written as X{id}X with no separator between
// tokens, e.g. [1 12] -> "X1XX12X", so "does this post carry tag t" is a
// plain substring search for X{t}X. Flanking each id on both sides is what
// keeps tag 1 from matching a stored 12 or 21.
package tagset

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Delim flanks every encoded tag id.
const Delim = 'X'

// Encode packs ids in order. Duplicates are kept as given.
func Encode(ids []int32) []byte {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(Token(id))
	}
	return []byte(b.String())
}

// Decode unpacks a column value. Invalid UTF-8 decodes to an empty set, and
// any segment that is not a signed 32-bit integer (including the empty
// segments between adjacent delimiters) is skipped.
func Decode(blob []byte) []int32 {
	if !utf8.Valid(blob) {
		return []int32{}
	}
	ids := []int32{}
	for _, part := range strings.Split(string(blob), string(Delim)) {
		n, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, int32(n))
	}
	return ids
}

// Token returns the exact substring that marks membership of id.
func Token(id int32) string {
	return string(Delim) + strconv.FormatInt(int64(id), 10) + string(Delim)
}

// Contains reports whether the encoded blob carries id, without decoding it.
func Contains(blob []byte, id int32) bool {
	return utf8.Valid(blob) && strings.Contains(string(blob), Token(id))
}
