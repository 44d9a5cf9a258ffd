package models

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultRoles is assigned to every new identity.
func DefaultRoles() []Role { return []Role{RoleUser} }

func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRoles upper-cases and de-duplicates tags, keeping input order.
// ok is false when a tag is unknown.
func ParseRoles(tags []string) (roles []Role, ok bool) {
	seen := make(map[Role]struct{}, len(tags))
	for _, t := range tags {
		r := Role(strings.ToUpper(strings.TrimSpace(t)))
		if !ValidRole(r) {
			return nil, false
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, true
}

// HasRole reports whether roles contains tag.
func HasRole[T ~string](roles []T, tag Role) bool {
	for _, r := range roles {
		if Role(r) == tag {
			return true
		}
	}
	return false
}
