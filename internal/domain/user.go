package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAffiliate Role = "affiliate"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAffiliate:
		return true
	}
	return false
}

type User struct {
	ID         string
	Role       Role
	ReferrerID string
	ManagerID  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	SaveUser(ctx context.Context, user *User) error
}
