// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Tag is a named label that posts reference by id.
type Tag struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	IsDel bool   `json:"is_del"`
}
