package entity

import (
	"procurement-marketplace-api/internal/common"

	"github.com/google/uuid"
)

// Principal is the resolved caller identity attached to every service call.
// It is built once by the auth middleware; services never read ambient state.
type Principal struct {
	Id             uuid.UUID
	Kind           string // common.KindUser or common.KindVendor
	Role           string // set only for organization users
	OrganizationId uuid.UUID
}

func (p Principal) IsUser() bool {
	return p.Kind == common.KindUser
}

func (p Principal) IsVendor() bool {
	return p.Kind == common.KindVendor
}

// IsMemberOf reports whether the principal is an organization user of the
// given organization.
func (p Principal) IsMemberOf(organizationId uuid.UUID) bool {
	return p.IsUser() && p.OrganizationId == organizationId
}

// IsManagerOf reports whether the principal is a managerial member of the
// given organization (manager or admin of it).
func (p Principal) IsManagerOf(organizationId uuid.UUID) bool {
	return p.IsMemberOf(organizationId) && common.IsManagerial(p.Role)
}
