package entity

import (
	"time"

	"procurement-marketplace-api/internal/common"

	"github.com/google/uuid"
)

// db model. Password hash is never serialized.
type User struct {
	Id              uuid.UUID
	Email           string
	PasswordHash    string
	Name            string
	Role            string
	OrganizationId  uuid.UUID
	ManagerId       *uuid.UUID
	Permissions     []string
	IsActive        bool
	IsEmailVerified bool
	LoginAttempts   int
	LockUntil       *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
}

func (u *User) AccountID() uuid.UUID    { return u.Id }
func (u *User) AccountEmail() string    { return u.Email }
func (u *User) AccountKind() string     { return common.KindUser }
func (u *User) ActiveAccount() bool     { return u.IsActive }
func (u *User) LockedUntil() *time.Time { return u.LockUntil }
func (u *User) ComparePassword(plain string) bool {
	return comparePassword(u.PasswordHash, plain)
}

// service + repo input model
type CreateUserInput struct {
	Email          string
	Password       string
	Name           string
	Role           string
	OrganizationId uuid.UUID
	ManagerId      *uuid.UUID
}

// Admin-driven member mutation; nil fields are left unchanged.
type UpdateUserInput struct {
	Role      *string
	ManagerId *uuid.UUID
	IsActive  *bool
}

// controller model
type UserOutputModel struct {
	Id             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	OrganizationId string   `json:"organizationId"`
	ManagerId      string   `json:"managerId,omitempty"`
	Permissions    []string `json:"permissions"`
	IsActive       bool     `json:"isActive"`
	CreatedAt      string   `json:"createdAt"`
}
