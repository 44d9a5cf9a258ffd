// Package models defines server-side data models persisted in the database.
package models

import "time"

// Identity is the authentication record of a single user.
type Identity struct {
	ID string
	// Email is stored trimmed and lower-cased.
	Email string
	// PasswordVerifier is the bcrypt hash. Never log or return it.
	PasswordVerifier string
	Roles            []Role
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RoleStrings returns the roles as plain strings, as embedded into tokens.
func (i *Identity) RoleStrings() []string {
	out := make([]string, len(i.Roles))
	for n, r := range i.Roles {
		out[n] = string(r)
	}
	return out
}
