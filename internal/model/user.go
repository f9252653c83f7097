package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the persisted access level of a user.
type Role string

const (
	// RoleAdmin grants access to the admin section.
	RoleAdmin Role = "ADMIN"
	// RoleMember is the default role for every new account.
	RoleMember Role = "MEMBER"
)

// Normalized returns the lowercase form carried in session tokens.
func (r Role) Normalized() string {
	switch r {
	case RoleAdmin, Role("admin"):
		return "admin"
	default:
		return "member"
	}
}

// User represents an identity record in the persistent store.
// PasswordHash is nil for accounts created through an OAuth provider;
// exactly one of password hash or linked OAuth account determines how
// the user may authenticate.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash *string   `json:"-" gorm:"size:255"` // Never expose in JSON
	Role         Role      `json:"role" gorm:"size:50;not null;default:'MEMBER'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
