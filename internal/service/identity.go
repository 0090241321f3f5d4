package service

import (
	"context"
	"errors"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/repo"
	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

type IdentityService struct {
	orgRepo    repo.Organization
	userRepo   repo.User
	vendorRepo repo.Vendor
	signer     TokenSigner
	now        func() time.Time
}

func NewIdentityService(repos *repo.Repositories, signer TokenSigner) *IdentityService {
	return &IdentityService{
		orgRepo:    repos.Organization,
		userRepo:   repos.User,
		vendorRepo: repos.Vendor,
		signer:     signer,
		now:        time.Now,
	}
}

func (s *IdentityService) RegisterOrganization(ctx context.Context, input *entity.RegisterOrganizationInput) (*entity.OrganizationOutputModel, error) {
	passwordHash, err := entity.HashPassword(input.AdminPassword)
	if err != nil {
		return nil, err
	}

	org := &entity.Organization{
		Name:     input.Name,
		Industry: input.Industry,
		Address:  input.Address,
		Contact:  input.Contact,
		IsActive: true,
	}
	admin := &entity.User{
		Email:        input.AdminEmail,
		PasswordHash: passwordHash,
		Name:         input.AdminName,
		Role:         common.RoleAdmin,
		IsActive:     true,
	}

	orgId, _, err := s.orgRepo.CreateOrganizationWithAdmin(ctx, org, admin)
	if err != nil {
		if errors.Is(err, repo_errors.ErrUniqueViolation) {
			return nil, ErrOrganizationNameTaken
		}

		return nil, err
	}

	created, err := s.orgRepo.GetOrganizationById(ctx, orgId)
	if err != nil {
		return nil, err
	}

	return mapOrganization(created), nil
}

func (s *IdentityService) RegisterVendor(ctx context.Context, input *entity.RegisterVendorInput) (*entity.VendorOutputModel, error) {
	passwordHash, err := entity.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	id, err := s.vendorRepo.CreateVendor(ctx, input, passwordHash)
	if err != nil {
		if errors.Is(err, repo_errors.ErrUniqueViolation) {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	vendor, err := s.vendorRepo.GetVendorById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapVendor(vendor), nil
}

// Login authenticates either principal kind through the shared account
// surface. Lookup failures and password mismatches collapse into the same
// credentials error so the response never reveals which one happened.
func (s *IdentityService) Login(ctx context.Context, email, password, kind string) (string, error) {
	account, principal, err := s.findAccount(ctx, email, kind)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return "", ErrInvalidCredentials
		}

		return "", err
	}

	now := s.now()
	if entity.IsLocked(account, now) {
		return "", ErrAccountLocked
	}
	if !account.ActiveAccount() {
		return "", ErrAccountInactive
	}

	if !account.ComparePassword(password) {
		if err := s.recordFailure(ctx, account, now); err != nil {
			return "", err
		}

		return "", ErrInvalidCredentials
	}

	if err := s.recordSuccess(ctx, account, now); err != nil {
		return "", err
	}

	return s.signer.Sign(principal)
}

func (s *IdentityService) findAccount(ctx context.Context, email, kind string) (entity.Account, entity.Principal, error) {
	switch kind {
	case common.KindVendor:
		vendor, err := s.vendorRepo.GetVendorByEmail(ctx, email)
		if err != nil {
			return nil, entity.Principal{}, err
		}

		return vendor, entity.Principal{Id: vendor.Id, Kind: common.KindVendor}, nil
	default:
		user, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, entity.Principal{}, err
		}

		p := entity.Principal{
			Id:             user.Id,
			Kind:           common.KindUser,
			Role:           user.Role,
			OrganizationId: user.OrganizationId,
		}

		return user, p, nil
	}
}

func (s *IdentityService) recordFailure(ctx context.Context, account entity.Account, now time.Time) error {
	attempts := 0
	switch a := account.(type) {
	case *entity.User:
		attempts = a.LoginAttempts
	case *entity.Vendor:
		attempts = a.LoginAttempts
	}

	attempts, lockUntil := entity.NextLockout(attempts, now)
	if account.AccountKind() == common.KindVendor {
		return s.vendorRepo.RecordFailedLogin(ctx, account.AccountID(), attempts, lockUntil)
	}

	return s.userRepo.RecordFailedLogin(ctx, account.AccountID(), attempts, lockUntil)
}

func (s *IdentityService) recordSuccess(ctx context.Context, account entity.Account, now time.Time) error {
	if account.AccountKind() == common.KindVendor {
		return s.vendorRepo.RecordSuccessfulLogin(ctx, account.AccountID(), now)
	}

	return s.userRepo.RecordSuccessfulLogin(ctx, account.AccountID(), now)
}

func (s *IdentityService) GetOrganizationById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.OrganizationOutputModel, error) {
	org, err := s.orgRepo.GetOrganizationById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}

		return nil, err
	}

	return mapOrganization(org), nil
}

func (s *IdentityService) CreateUser(ctx context.Context, p entity.Principal, input *entity.CreateUserInput) (*entity.UserOutputModel, error) {
	if !p.IsUser() {
		return nil, ErrUsersOnly
	}
	if p.Role != common.RoleAdmin {
		return nil, ErrAdminOnly
	}

	switch input.Role {
	case common.RoleAdmin, common.RoleManager, common.RoleUser:
	default:
		return nil, validationErrorf("unknown role %q", input.Role)
	}

	if input.ManagerId != nil {
		if err := s.checkManager(ctx, *input.ManagerId, p.OrganizationId); err != nil {
			return nil, err
		}
	}

	input.OrganizationId = p.OrganizationId

	passwordHash, err := entity.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	id, err := s.userRepo.CreateUser(ctx, input, passwordHash)
	if err != nil {
		if errors.Is(err, repo_errors.ErrUniqueViolation) {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapUser(user), nil
}

func (s *IdentityService) UpdateUser(ctx context.Context, p entity.Principal, userId uuid.UUID, input *entity.UpdateUserInput) (*entity.UserOutputModel, error) {
	if !p.IsUser() {
		return nil, ErrUsersOnly
	}
	if p.Role != common.RoleAdmin {
		return nil, ErrAdminOnly
	}

	user, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}
	if user.OrganizationId != p.OrganizationId {
		return nil, ErrNotOrganizationMember
	}

	if input.Role != nil {
		switch *input.Role {
		case common.RoleAdmin, common.RoleManager, common.RoleUser:
		default:
			return nil, validationErrorf("unknown role %q", *input.Role)
		}
	}
	if input.ManagerId != nil {
		if err := s.checkManager(ctx, *input.ManagerId, p.OrganizationId); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.UpdateUser(ctx, userId, input); err != nil {
		return nil, err
	}

	user, err = s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	return mapUser(user), nil
}

func (s *IdentityService) GetVendorById(ctx context.Context, p entity.Principal, id uuid.UUID) (*entity.VendorOutputModel, error) {
	vendor, err := s.vendorRepo.GetVendorById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrVendorNotFound
		}

		return nil, err
	}

	return mapVendor(vendor), nil
}

// checkManager requires the referenced user to be an active managerial
// member of the given organization.
func (s *IdentityService) checkManager(ctx context.Context, managerId, organizationId uuid.UUID) error {
	manager, err := s.userRepo.GetUserById(ctx, managerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	if manager.OrganizationId != organizationId {
		return ErrNotOrganizationMember
	}
	if !manager.IsActive {
		return validationErrorf("manager account is deactivated")
	}
	if !common.IsManagerial(manager.Role) {
		return validationErrorf("assigned manager must hold a managerial role")
	}

	return nil
}
