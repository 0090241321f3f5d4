package entity

import (
	"time"

	"procurement-marketplace-api/internal/common"

	"github.com/google/uuid"
)

// db model. Vendors are independent principals with no organization.
type Vendor struct {
	Id             uuid.UUID
	Email          string
	PasswordHash   string
	Name           string
	Specialization []string
	Location       string
	Rating         float64
	CompletedJobs  int
	IsActive       bool
	LoginAttempts  int
	LockUntil      *time.Time
	LastLoginAt    *time.Time
	CreatedAt      time.Time
}

func (v *Vendor) AccountID() uuid.UUID    { return v.Id }
func (v *Vendor) AccountEmail() string    { return v.Email }
func (v *Vendor) AccountKind() string     { return common.KindVendor }
func (v *Vendor) ActiveAccount() bool     { return v.IsActive }
func (v *Vendor) LockedUntil() *time.Time { return v.LockUntil }
func (v *Vendor) ComparePassword(plain string) bool {
	return comparePassword(v.PasswordHash, plain)
}

// service + repo input model
type RegisterVendorInput struct {
	Email          string
	Password       string
	Name           string
	Specialization []string
	Location       string
}

// controller model
type VendorOutputModel struct {
	Id             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Specialization []string `json:"specialization"`
	Location       string   `json:"location"`
	Rating         float64  `json:"rating"`
	CompletedJobs  int      `json:"completedJobs"`
	IsActive       bool     `json:"isActive"`
	CreatedAt      string   `json:"createdAt"`
}
