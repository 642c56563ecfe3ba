package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleClient   Role = "CLIENT"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOperator, RoleClient:
		return Role(s), nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Roles        []Role    `db:"roles" json:"roles"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}

	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Principal is the authenticated actor, built by the HTTP auth middleware
// and passed explicitly into every service call.
type Principal struct {
	UserID   int64
	Username string
	Roles    []Role
}

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}

	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
