// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Admin is an account allowed into the admin API.
type Admin struct {
	ID           int32  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never serialize the hash
	IsDel        bool   `json:"is_del"`
}

// Active reports whether the account has not been soft-deleted.
func (a *Admin) Active() bool {
	return !a.IsDel
}
