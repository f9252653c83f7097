package auth

import (
	"strings"

	"codecrafting/internal/model"
)

// RoleMapping assigns roles to OAuth sign-ins by email. It is built once at
// startup from configuration and read-only afterwards, so concurrent lookups
// need no synchronization.
type RoleMapping struct {
	admins map[string]struct{}
}

// NewRoleMapping builds the table from the configured admin email list.
// Emails are case-folded; duplicates are harmless.
func NewRoleMapping(adminEmails []string) *RoleMapping {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &RoleMapping{admins: admins}
}

// RoleFor returns the configured role for email, defaulting to member for
// anyone not listed. Lookup is case-insensitive.
func (m *RoleMapping) RoleFor(email string) model.Role {
	if _, ok := m.admins[strings.ToLower(email)]; ok {
		return model.RoleAdmin
	}
	return model.RoleMember
}
