package service

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/internal/oracle"
	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hand-written repository mocks. Every method has an optional Func override;
// without one it falls back to the fixture fields or a not-found error.

type organizationRepoMock struct {
	organization              *entity.Organization
	CreateWithAdminFunc       func(ctx context.Context, org *entity.Organization, admin *entity.User) (uuid.UUID, uuid.UUID, error)
	createWithAdminCallsCount int
}

func (m *organizationRepoMock) CreateOrganizationWithAdmin(ctx context.Context, org *entity.Organization, admin *entity.User) (uuid.UUID, uuid.UUID, error) {
	m.createWithAdminCallsCount++
	if m.CreateWithAdminFunc != nil {
		return m.CreateWithAdminFunc(ctx, org, admin)
	}
	if m.organization == nil {
		m.organization = org
		m.organization.Id = uuid.New()
	}
	return m.organization.Id, uuid.New(), nil
}

func (m *organizationRepoMock) GetOrganizationById(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	if m.organization == nil || m.organization.Id != id {
		return nil, repo_errors.ErrNotFound
	}
	return m.organization, nil
}

type userRepoMock struct {
	users map[uuid.UUID]*entity.User

	CreateUserFunc func(ctx context.Context, input *entity.CreateUserInput, passwordHash string) (uuid.UUID, error)
	UpdateUserFunc func(ctx context.Context, id uuid.UUID, input *entity.UpdateUserInput) error

	failedLoginId      uuid.UUID
	failedLoginCount   int
	failedLoginLock    *time.Time
	successfulLoginIds []uuid.UUID
}

func newUserRepoMock(users ...*entity.User) *userRepoMock {
	m := &userRepoMock{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		m.users[u.Id] = u
	}
	return m
}

func (m *userRepoMock) CreateUser(ctx context.Context, input *entity.CreateUserInput, passwordHash string) (uuid.UUID, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, input, passwordHash)
	}
	u := &entity.User{
		Id: uuid.New(), Email: input.Email, PasswordHash: passwordHash, Name: input.Name,
		Role: input.Role, OrganizationId: input.OrganizationId, ManagerId: input.ManagerId,
		IsActive: true, CreatedAt: time.Now(),
	}
	m.users[u.Id] = u
	return u.Id, nil
}

func (m *userRepoMock) GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	return u, nil
}

func (m *userRepoMock) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo_errors.ErrNotFound
}

func (m *userRepoMock) UpdateUser(ctx context.Context, id uuid.UUID, input *entity.UpdateUserInput) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, input)
	}
	u, ok := m.users[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if input.Role != nil {
		u.Role = *input.Role
	}
	if input.ManagerId != nil {
		u.ManagerId = input.ManagerId
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	return nil
}

func (m *userRepoMock) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error {
	m.failedLoginId = id
	m.failedLoginCount = attempts
	m.failedLoginLock = lockUntil
	return nil
}

func (m *userRepoMock) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.successfulLoginIds = append(m.successfulLoginIds, id)
	return nil
}

type vendorRepoMock struct {
	vendors map[uuid.UUID]*entity.Vendor

	CreateVendorFunc func(ctx context.Context, input *entity.RegisterVendorInput, passwordHash string) (uuid.UUID, error)

	failedLoginId    uuid.UUID
	failedLoginCount int
	failedLoginLock  *time.Time
}

func newVendorRepoMock(vendors ...*entity.Vendor) *vendorRepoMock {
	m := &vendorRepoMock{vendors: make(map[uuid.UUID]*entity.Vendor)}
	for _, v := range vendors {
		m.vendors[v.Id] = v
	}
	return m
}

func (m *vendorRepoMock) CreateVendor(ctx context.Context, input *entity.RegisterVendorInput, passwordHash string) (uuid.UUID, error) {
	if m.CreateVendorFunc != nil {
		return m.CreateVendorFunc(ctx, input, passwordHash)
	}
	v := &entity.Vendor{
		Id: uuid.New(), Email: input.Email, PasswordHash: passwordHash, Name: input.Name,
		Specialization: input.Specialization, Location: input.Location, IsActive: true, CreatedAt: time.Now(),
	}
	m.vendors[v.Id] = v
	return v.Id, nil
}

func (m *vendorRepoMock) GetVendorById(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	return v, nil
}

func (m *vendorRepoMock) GetVendorByEmail(ctx context.Context, email string) (*entity.Vendor, error) {
	for _, v := range m.vendors {
		if v.Email == email {
			return v, nil
		}
	}
	return nil, repo_errors.ErrNotFound
}

func (m *vendorRepoMock) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error {
	m.failedLoginId = id
	m.failedLoginCount = attempts
	m.failedLoginLock = lockUntil
	return nil
}

func (m *vendorRepoMock) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type rfpRepoMock struct {
	requests map[uuid.UUID]*entity.RFPRequest

	UpdateFunc        func(ctx context.Context, id uuid.UUID, input *entity.UpdateRFPInput) error
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	ReviewFunc        func(ctx context.Context, id uuid.UUID, decision, note string, now time.Time) error
	MarkConvertedFunc func(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID) error
}

func newRFPRepoMock(requests ...*entity.RFPRequest) *rfpRepoMock {
	m := &rfpRepoMock{requests: make(map[uuid.UUID]*entity.RFPRequest)}
	for _, r := range requests {
		m.requests[r.Id] = r
	}
	return m
}

func (m *rfpRepoMock) CreateRFPRequest(ctx context.Context, input *entity.CreateRFPInput) (uuid.UUID, error) {
	r := &entity.RFPRequest{
		Id: uuid.New(), Title: input.Title, Description: input.Description, Category: input.Category,
		Urgency: input.Urgency, BudgetEstimate: input.BudgetEstimate, Justification: input.Justification,
		Status: "pending", RequestedById: input.RequestedById, OrganizationId: input.OrganizationId,
		ManagerId: input.ManagerId, CreatedAt: time.Now(),
	}
	m.requests[r.Id] = r
	return r.Id, nil
}

func (m *rfpRepoMock) GetRFPRequestById(ctx context.Context, id uuid.UUID) (*entity.RFPRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	return r, nil
}

func (m *rfpRepoMock) GetRFPRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, status string, pg *entity.PaginationInput) ([]entity.RFPRequest, error) {
	out := make([]entity.RFPRequest, 0)
	for _, r := range m.requests {
		if r.OrganizationId == organizationId && (status == "" || r.Status == status) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *rfpRepoMock) UpdatePendingRFPRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateRFPInput) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, input)
	}
	r, ok := m.requests[id]
	if !ok || r.Status != "pending" {
		return repo_errors.ErrStaleState
	}
	if input.Title != nil {
		r.Title = *input.Title
	}
	if input.BudgetEstimate != nil {
		r.BudgetEstimate = *input.BudgetEstimate
	}
	return nil
}

func (m *rfpRepoMock) DeletePendingRFPRequest(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	r, ok := m.requests[id]
	if !ok || r.Status != "pending" {
		return repo_errors.ErrStaleState
	}
	delete(m.requests, id)
	return nil
}

func (m *rfpRepoMock) ReviewRFPRequest(ctx context.Context, id uuid.UUID, decision, note string, now time.Time) error {
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, id, decision, note, now)
	}
	r, ok := m.requests[id]
	if !ok || (r.Status != "pending" && r.Status != "needs_clarification") {
		return repo_errors.ErrStaleState
	}
	r.Status = decision
	r.ReviewNote = note
	if r.ReviewedAt == nil {
		r.ReviewedAt = &now
	}
	return nil
}

func (m *rfpRepoMock) MarkConverted(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID) error {
	if m.MarkConvertedFunc != nil {
		return m.MarkConvertedFunc(ctx, id, marketRequestId)
	}
	r, ok := m.requests[id]
	if !ok || r.Status != "approved" || r.MarketRequestId != nil {
		return repo_errors.ErrStaleState
	}
	r.Status = "converted_to_market"
	r.MarketRequestId = &marketRequestId
	return nil
}

type marketRepoMock struct {
	markets map[uuid.UUID]*entity.MarketRequest

	UpdateFunc     func(ctx context.Context, id uuid.UUID, input *entity.UpdateMarketInput) error
	CloseFunc      func(ctx context.Context, id uuid.UUID, reason string, now time.Time) error
	RecordViewFunc func(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error)

	deletedIds      []uuid.UUID
	upsertCalls     int
	upsertInterests []bool
}

func newMarketRepoMock(markets ...*entity.MarketRequest) *marketRepoMock {
	m := &marketRepoMock{markets: make(map[uuid.UUID]*entity.MarketRequest)}
	for _, mr := range markets {
		m.markets[mr.Id] = mr
	}
	return m
}

func (m *marketRepoMock) CreateMarketRequest(ctx context.Context, mr *entity.MarketRequest) (uuid.UUID, error) {
	mr.Id = uuid.New()
	mr.Status = "open"
	m.markets[mr.Id] = mr
	return mr.Id, nil
}

func (m *marketRepoMock) DeleteMarketRequest(ctx context.Context, id uuid.UUID) error {
	m.deletedIds = append(m.deletedIds, id)
	delete(m.markets, id)
	return nil
}

func (m *marketRepoMock) GetMarketRequestById(ctx context.Context, id uuid.UUID) (*entity.MarketRequest, error) {
	mr, ok := m.markets[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	return mr, nil
}

func (m *marketRepoMock) GetOpenMarketRequests(ctx context.Context, filter *entity.MarketFilter, pg *entity.PaginationInput) ([]entity.MarketRequest, error) {
	out := make([]entity.MarketRequest, 0)
	for _, mr := range m.markets {
		if mr.Status != "open" {
			continue
		}
		if filter != nil && filter.Category != "" && mr.Category != filter.Category {
			continue
		}
		out = append(out, *mr)
	}
	return out, nil
}

func (m *marketRepoMock) GetMarketRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, pg *entity.PaginationInput) ([]entity.MarketRequest, error) {
	out := make([]entity.MarketRequest, 0)
	for _, mr := range m.markets {
		if mr.OrganizationId == organizationId {
			out = append(out, *mr)
		}
	}
	return out, nil
}

func (m *marketRepoMock) UpdateOpenMarketRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateMarketInput) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, input)
	}
	mr, ok := m.markets[id]
	if !ok || mr.Status != "open" {
		return repo_errors.ErrStaleState
	}
	if input.Title != nil {
		mr.Title = *input.Title
	}
	if input.Deadline != nil {
		mr.Deadline = *input.Deadline
	}
	return nil
}

func (m *marketRepoMock) CloseMarketRequest(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx, id, reason, now)
	}
	mr, ok := m.markets[id]
	if !ok || mr.Status != "open" {
		return repo_errors.ErrStaleState
	}
	mr.Status = "closed"
	mr.CancellationReason = reason
	mr.ClosedAt = &now
	return nil
}

func (m *marketRepoMock) RecordVendorView(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error) {
	if m.RecordViewFunc != nil {
		return m.RecordViewFunc(ctx, marketRequestId, vendorId, now)
	}
	return false, nil
}

func (m *marketRepoMock) UpsertVendorInterest(ctx context.Context, marketRequestId, vendorId uuid.UUID, isInterested bool, now time.Time) error {
	m.upsertCalls++
	m.upsertInterests = append(m.upsertInterests, isInterested)
	return nil
}

func (m *marketRepoMock) GetVendorInterest(ctx context.Context, marketRequestId uuid.UUID) ([]entity.VendorInterest, error) {
	return []entity.VendorInterest{}, nil
}

type proposalRepoMock struct {
	proposals map[uuid.UUID]*entity.Proposal

	CreateFunc         func(ctx context.Context, input *entity.CreateProposalInput, totalPrice decimal.Decimal, now time.Time) (uuid.UUID, error)
	SubmitFunc         func(ctx context.Context, id, marketRequestId uuid.UUID, now time.Time) error
	AcceptAndAwardFunc func(ctx context.Context, marketRequestId, proposalId uuid.UUID, allowedStatuses []string, now time.Time) error
	SetAIFunc          func(ctx context.Context, id uuid.UUID, evaluation *entity.AIEvaluation) error

	lastCreateTotal    decimal.Decimal
	lastUpdateTotal    *decimal.Decimal
	lastAllowed        []string
	lastAIEvaluationId uuid.UUID
	aiEvaluations      map[uuid.UUID]*entity.AIEvaluation
}

func newProposalRepoMock(proposals ...*entity.Proposal) *proposalRepoMock {
	m := &proposalRepoMock{
		proposals:     make(map[uuid.UUID]*entity.Proposal),
		aiEvaluations: make(map[uuid.UUID]*entity.AIEvaluation),
	}
	for _, p := range proposals {
		m.proposals[p.Id] = p
	}
	return m
}

func (m *proposalRepoMock) CreateProposal(ctx context.Context, input *entity.CreateProposalInput, totalPrice decimal.Decimal, now time.Time) (uuid.UUID, error) {
	m.lastCreateTotal = totalPrice
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input, totalPrice, now)
	}
	p := &entity.Proposal{
		Id: uuid.New(), MarketRequestId: input.MarketRequestId, VendorId: input.VendorId,
		ProposedItem: input.ProposedItem, Quantity: input.Quantity, UnitPrice: input.UnitPrice,
		TotalPrice: totalPrice, Currency: input.Currency, DeliveryDate: input.DeliveryDate,
		Status: "draft", ComplianceDocs: input.ComplianceDocs, VendorNotes: input.VendorNotes,
		CreatedAt: now,
	}
	m.proposals[p.Id] = p
	return p.Id, nil
}

func (m *proposalRepoMock) GetProposalById(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	return p, nil
}

func (m *proposalRepoMock) GetProposalsByMarketRequest(ctx context.Context, marketRequestId uuid.UUID, statuses []string, pg *entity.PaginationInput) ([]entity.Proposal, error) {
	out := make([]entity.Proposal, 0)
	for _, p := range m.proposals {
		if p.MarketRequestId != marketRequestId {
			continue
		}
		for _, s := range statuses {
			if p.Status == s {
				out = append(out, *p)
				break
			}
		}
	}
	return out, nil
}

func (m *proposalRepoMock) GetProposalsByVendor(ctx context.Context, vendorId uuid.UUID, pg *entity.PaginationInput) ([]entity.Proposal, error) {
	out := make([]entity.Proposal, 0)
	for _, p := range m.proposals {
		if p.VendorId == vendorId {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *proposalRepoMock) UpdateDraftProposal(ctx context.Context, id uuid.UUID, input *entity.UpdateProposalInput, totalPrice *decimal.Decimal) error {
	m.lastUpdateTotal = totalPrice
	p, ok := m.proposals[id]
	if !ok || p.Status != "draft" {
		return repo_errors.ErrStaleState
	}
	if input.UnitPrice != nil {
		p.UnitPrice = *input.UnitPrice
	}
	if input.Quantity != nil {
		p.Quantity = *input.Quantity
	}
	if totalPrice != nil {
		p.TotalPrice = *totalPrice
	}
	return nil
}

func (m *proposalRepoMock) DeleteDraftProposal(ctx context.Context, id uuid.UUID) error {
	p, ok := m.proposals[id]
	if !ok || p.Status != "draft" {
		return repo_errors.ErrStaleState
	}
	delete(m.proposals, id)
	return nil
}

func (m *proposalRepoMock) SubmitProposal(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID, now time.Time) error {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, id, marketRequestId, now)
	}
	p, ok := m.proposals[id]
	if !ok || p.Status != "draft" {
		return repo_errors.ErrStaleState
	}
	p.Status = "submitted"
	p.SubmittedAt = &now
	return nil
}

func (m *proposalRepoMock) WithdrawProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	p, ok := m.proposals[id]
	if !ok || (p.Status != "submitted" && p.Status != "under_review") {
		return repo_errors.ErrStaleState
	}
	p.Status = "withdrawn"
	p.WithdrawnAt = &now
	return nil
}

func (m *proposalRepoMock) EvaluateProposal(ctx context.Context, id uuid.UUID, evaluation *entity.Evaluation, now time.Time) error {
	p, ok := m.proposals[id]
	if !ok || p.Status != "submitted" {
		return repo_errors.ErrStaleState
	}
	p.Status = "under_review"
	p.Evaluation = evaluation
	if p.ReviewedAt == nil {
		p.ReviewedAt = &now
	}
	return nil
}

func (m *proposalRepoMock) RejectProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	p, ok := m.proposals[id]
	if !ok || (p.Status != "submitted" && p.Status != "under_review") {
		return repo_errors.ErrStaleState
	}
	p.Status = "rejected"
	p.RejectionReason = reason
	p.RejectedAt = &now
	return nil
}

func (m *proposalRepoMock) AcceptAndAward(ctx context.Context, marketRequestId, proposalId uuid.UUID, allowedStatuses []string, now time.Time) error {
	m.lastAllowed = allowedStatuses
	if m.AcceptAndAwardFunc != nil {
		return m.AcceptAndAwardFunc(ctx, marketRequestId, proposalId, allowedStatuses, now)
	}
	p, ok := m.proposals[proposalId]
	if !ok {
		return repo_errors.ErrStaleState
	}
	p.Status = "accepted"
	p.AcceptedAt = &now
	return nil
}

func (m *proposalRepoMock) SetAIEvaluation(ctx context.Context, id uuid.UUID, evaluation *entity.AIEvaluation) error {
	if m.SetAIFunc != nil {
		return m.SetAIFunc(ctx, id, evaluation)
	}
	m.lastAIEvaluationId = id
	m.aiEvaluations[id] = evaluation
	if p, ok := m.proposals[id]; ok {
		p.AIEvaluation = evaluation
	}
	return nil
}

func (m *proposalRepoMock) GetProposalsPendingAIEvaluation(ctx context.Context, marketRequestId uuid.UUID) ([]entity.Proposal, error) {
	out := make([]entity.Proposal, 0)
	for _, p := range m.proposals {
		if p.MarketRequestId != marketRequestId || p.AIEvaluation != nil {
			continue
		}
		if p.Status == "submitted" || p.Status == "under_review" {
			out = append(out, *p)
		}
	}
	return out, nil
}

type oracleMock struct {
	EvaluateFunc func(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error)
	calls        int
}

func (m *oracleMock) EvaluateProposal(ctx context.Context, req *oracle.EvaluationRequest) (*oracle.EvaluationResult, error) {
	m.calls++
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, req)
	}
	return &oracle.EvaluationResult{
		CostScore: 80, DeliveryScore: 70, ComplianceScore: 90, OverallScore: 80,
		Confidence: 0.9, Insights: []string{"solid offer"},
	}, nil
}

type signerMock struct {
	lastPrincipal entity.Principal
}

func (m *signerMock) Sign(p entity.Principal) (string, error) {
	m.lastPrincipal = p
	return "token-" + p.Id.String(), nil
}
