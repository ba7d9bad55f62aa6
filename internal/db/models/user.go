package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the stored authorization role of an identity.
type Role string

const (
	RoleUser      Role = "USER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r may log in with local credentials.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdmin
}

// AuthSource records how an identity was first created. It never changes.
type AuthSource string

const (
	AuthSourceFederated AuthSource = "FEDERATED"
	AuthSourceLocal     AuthSource = "LOCAL"
)

// User is an identity record shared by the federated and local login paths.
// PasswordHash is set if and only if AuthSource is LOCAL.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash *string    `bun:"password_hash"`
	Name         *string    `bun:"name"`
	Picture      *string    `bun:"picture"`
	Role         Role       `bun:"role,notnull,default:'USER'"`
	AuthSource   AuthSource `bun:"auth_source,notnull"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// DisplayName returns the profile name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
