package entity

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 2 * time.Hour
)

// Account is the capability surface shared by the two principal kinds.
// Login and lockout handling dispatch through it instead of branching on a
// userType string per call site.
type Account interface {
	AccountID() uuid.UUID
	AccountEmail() string
	AccountKind() string
	ActiveAccount() bool
	LockedUntil() *time.Time
	ComparePassword(plain string) bool
}

// IsLocked reports whether the account is under login lockout at the given
// instant.
func IsLocked(a Account, now time.Time) bool {
	until := a.LockedUntil()
	return until != nil && now.Before(*until)
}

// NextLockout returns the updated attempt counter and, once the attempt
// limit is reached, the instant the lockout expires.
func NextLockout(attempts int, now time.Time) (int, *time.Time) {
	attempts++
	if attempts >= maxLoginAttempts {
		until := now.Add(lockoutDuration)
		return attempts, &until
	}
	return attempts, nil
}

// HashPassword produces the bcrypt hash stored on both principal kinds.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func comparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
