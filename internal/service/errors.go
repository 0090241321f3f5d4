package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every service error wraps exactly one kind so controllers can
// map it to a transport status with a single errors.Is chain.
var (
	ErrAuthorization = errors.New("authorization error")
	ErrState         = errors.New("state error")
	ErrConflict      = errors.New("conflict error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrEvaluation    = errors.New("evaluation error")
)

// Authorization failures.
var (
	ErrInvalidCredentials    = fmt.Errorf("%w: invalid email or password", ErrAuthorization)
	ErrAccountLocked         = fmt.Errorf("%w: account is temporarily locked", ErrAuthorization)
	ErrAccountInactive       = fmt.Errorf("%w: account is deactivated", ErrAuthorization)
	ErrUsersOnly             = fmt.Errorf("%w: operation is restricted to organization users", ErrAuthorization)
	ErrVendorsOnly           = fmt.Errorf("%w: operation is restricted to vendors", ErrAuthorization)
	ErrAdminOnly             = fmt.Errorf("%w: operation is restricted to organization admins", ErrAuthorization)
	ErrNotOrganizationMember = fmt.Errorf("%w: caller is not a member of the organization", ErrAuthorization)
	ErrNotManager            = fmt.Errorf("%w: caller is not a manager of the organization", ErrAuthorization)
	ErrNotRequestOwner       = fmt.Errorf("%w: caller did not create this request", ErrAuthorization)
	ErrNotProposalOwner      = fmt.Errorf("%w: caller did not create this proposal", ErrAuthorization)
	ErrNotAssignedReviewer   = fmt.Errorf("%w: caller is neither the assigned manager nor an organization admin", ErrAuthorization)
)

// State failures. Raised when an operation finds its entity outside the
// status the transition departs from, including losses of a concurrent race.
var (
	ErrRFPNotPending           = fmt.Errorf("%w: request is no longer pending", ErrState)
	ErrRFPNotReviewable        = fmt.Errorf("%w: request is not awaiting review", ErrState)
	ErrRFPNotApproved          = fmt.Errorf("%w: request is not approved", ErrState)
	ErrMarketNotOpen           = fmt.Errorf("%w: market request is not open", ErrState)
	ErrMarketDeadlinePassed    = fmt.Errorf("%w: market request deadline has passed", ErrState)
	ErrMarketAlreadyAwarded    = fmt.Errorf("%w: market request has already been awarded", ErrState)
	ErrProposalNotDraft        = fmt.Errorf("%w: proposal is no longer a draft", ErrState)
	ErrProposalNotWithdrawable = fmt.Errorf("%w: proposal cannot be withdrawn in its current status", ErrState)
	ErrProposalNotSubmitted    = fmt.Errorf("%w: proposal is not awaiting evaluation", ErrState)
	ErrProposalNotDecidable    = fmt.Errorf("%w: proposal cannot be accepted or rejected in its current status", ErrState)
)

// Conflict failures.
var (
	ErrDuplicateProposal     = fmt.Errorf("%w: vendor already has a proposal on this market request", ErrConflict)
	ErrRFPAlreadyConverted   = fmt.Errorf("%w: request has already been converted to a market request", ErrConflict)
	ErrEmailTaken            = fmt.Errorf("%w: email is already registered", ErrConflict)
	ErrOrganizationNameTaken = fmt.Errorf("%w: organization name is already registered", ErrConflict)
)

// Missing entities.
var (
	ErrOrganizationNotFound  = fmt.Errorf("%w: organization", ErrNotFound)
	ErrUserNotFound          = fmt.Errorf("%w: user", ErrNotFound)
	ErrVendorNotFound        = fmt.Errorf("%w: vendor", ErrNotFound)
	ErrRFPRequestNotFound    = fmt.Errorf("%w: rfp request", ErrNotFound)
	ErrMarketRequestNotFound = fmt.Errorf("%w: market request", ErrNotFound)
	ErrProposalNotFound      = fmt.Errorf("%w: proposal", ErrNotFound)
)

// validationError tags a business-rule violation with the validation kind
// while keeping the underlying sentinel matchable.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// evaluationError tags an oracle failure; the cause is kept in the message
// only, callers branch on the kind.
func evaluationError(err error) error {
	return fmt.Errorf("%w: %v", ErrEvaluation, err)
}
