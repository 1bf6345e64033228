// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// User roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents an admin account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    sql.NullTime `json:"updated_at,omitempty"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsOwner returns true if the user has the owner role.
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// ValidRole checks whether r is one of the known user roles.
func ValidRole(r string) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	default:
		return false
	}
}
