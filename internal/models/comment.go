// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Comment is a reader comment on a post. HashedEmail is computed by the
// client (avatar lookup); the plain address is never sent.
type Comment struct {
	ID          int32     `json:"id"`
	PostID      int32     `json:"post_id"`
	Name        string    `json:"name"`
	HashedEmail string    `json:"hashed_email"`
	Content     string    `json:"content"`
	IsDel       bool      `json:"is_del"`
	CreatedAt   time.Time `json:"created_at"`
}
