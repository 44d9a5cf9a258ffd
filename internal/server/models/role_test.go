package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]Role{RoleUser, RoleAdmin}, RoleAdmin))
	assert.False(t, HasRole([]Role{RoleUser}, RoleAdmin))
	assert.False(t, HasRole([]Role(nil), RoleUser))

	assert.True(t, HasRole([]string{"USER", "ADMIN"}, RoleAdmin))
	assert.False(t, HasRole([]string{"admin"}, RoleAdmin), "claims are compared verbatim")
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		want   []Role
		wantOK bool
	}{
		{"single", []string{"USER"}, []Role{RoleUser}, true},
		{"normalized", []string{" admin ", "user"}, []Role{RoleAdmin, RoleUser}, true},
		{"dedup", []string{"USER", "user", "ADMIN"}, []Role{RoleUser, RoleAdmin}, true},
		{"unknown", []string{"USER", "ROOT"}, nil, false},
		{"empty input", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRoles(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity_RoleStrings(t *testing.T) {
	i := &Identity{Roles: []Role{RoleUser, RoleAdmin}}
	assert.Equal(t, []string{"USER", "ADMIN"}, i.RoleStrings())
	assert.Equal(t, []Role{RoleUser}, DefaultRoles())
}
