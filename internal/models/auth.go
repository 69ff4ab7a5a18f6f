// Campuswatch - Campus Access Control and Presence Tracking
// Copyright 2026 The Campuswatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/campuswatch/campuswatch

package models

import (
	"time"
)

// Role constants define the account roles in the system.
// These align with the Casbin policy definitions in internal/authz.
const (
	// RoleGuard operates gates: records entries/exits and reads derived state.
	RoleGuard = "guard"

	// RoleAdmin has full access including account management and inherits
	// guard permissions.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleGuard, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthUser is a guard or admin account. Passwords are stored as bcrypt
// hashes only. AuthUser is a storage type; API responses expose a trimmed
// view so the hash never leaves the store layer.
type AuthUser struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserInfo is the client-facing view of an account.
type UserInfo struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Info returns the client-facing view of the account.
func (u *AuthUser) Info() UserInfo {
	return UserInfo{
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
