package pgdb

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProposalRepo struct {
	*postgres.Postgres
}

func NewProposalRepo(pgdb *postgres.Postgres) *ProposalRepo {
	return &ProposalRepo{pgdb}
}

const proposalColumns = "id, market_request_id, vendor_id, proposed_item, quantity, unit_price, total_price, currency, delivery_date, status, evaluation, ai_evaluation, compliance_documents, vendor_notes, manager_notes, rejection_reason, submitted_at, reviewed_at, accepted_at, rejected_at, withdrawn_at, created_at"

// CreateProposal bumps the market request's counter first, with the
// open-and-unexpired guard in the update itself, then inserts the proposal
// row. The (market_request_id, vendor_id) unique constraint enforces one
// proposal per vendor.
func (r *ProposalRepo) CreateProposal(ctx context.Context, input *entity.CreateProposalInput, totalPrice decimal.Decimal, now time.Time) (uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}

	bumpSql, args, _ := r.SqlBuilder.
		Update("market_request").
		Set("proposals_count", squirrel.Expr("proposals_count + 1")).
		Where("id = ?", input.MarketRequestId).
		Where("status = ?", common.MarketOpen).
		Where("deadline >= ?", now).
		ToSql()

	if err = requireAffected(tx.ExecContext(ctx, bumpSql, args...)); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, err
	}

	createSql, args, _ := r.SqlBuilder.
		Insert("proposal").
		Columns("market_request_id", "vendor_id", "proposed_item", "quantity", "unit_price", "total_price",
			"currency", "delivery_date", "status", "compliance_documents", "vendor_notes").
		Values(input.MarketRequestId, input.VendorId, input.ProposedItem, input.Quantity, input.UnitPrice, totalPrice,
			input.Currency, input.DeliveryDate, common.ProposalDraft, mustJSON(input.ComplianceDocs), input.VendorNotes).
		Suffix("RETURNING id").
		ToSql()

	var id uuid.UUID
	if err = tx.QueryRowContext(ctx, createSql, args...).Scan(&id); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, e
		}

		return uuid.Nil, translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (r *ProposalRepo) GetProposalById(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	getSql, args, _ := r.SqlBuilder.
		Select(proposalColumns).
		From("proposal").
		Where("id = ?", id).
		ToSql()

	row := r.Database.QueryRowContext(ctx, getSql, args...)
	p, err := scanProposal(row.Scan)
	if err != nil {
		return nil, translateError(err)
	}

	return p, nil
}

func (r *ProposalRepo) GetProposalsByMarketRequest(ctx context.Context, marketRequestId uuid.UUID, statuses []string, pg *entity.PaginationInput) ([]entity.Proposal, error) {
	builder := r.SqlBuilder.
		Select(proposalColumns).
		From("proposal").
		Where("market_request_id = ?", marketRequestId)

	if len(statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}

	listSql, args, _ := builder.
		OrderBy("created_at ASC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryProposals(ctx, listSql, args)
}

func (r *ProposalRepo) GetProposalsByVendor(ctx context.Context, vendorId uuid.UUID, pg *entity.PaginationInput) ([]entity.Proposal, error) {
	listSql, args, _ := r.SqlBuilder.
		Select(proposalColumns).
		From("proposal").
		Where("vendor_id = ?", vendorId).
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryProposals(ctx, listSql, args)
}

func (r *ProposalRepo) GetProposalsPendingAIEvaluation(ctx context.Context, marketRequestId uuid.UUID) ([]entity.Proposal, error) {
	listSql, args, _ := r.SqlBuilder.
		Select(proposalColumns).
		From("proposal").
		Where("market_request_id = ?", marketRequestId).
		Where(squirrel.Eq{"status": []string{common.ProposalSubmitted, common.ProposalUnderReview}}).
		Where("ai_evaluation IS NULL").
		OrderBy("created_at ASC").
		ToSql()

	return r.queryProposals(ctx, listSql, args)
}

func (r *ProposalRepo) queryProposals(ctx context.Context, query string, args []interface{}) ([]entity.Proposal, error) {
	rows, err := r.Database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := make([]entity.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return proposals, err
		}
		proposals = append(proposals, *p)
	}
	if err = rows.Err(); err != nil {
		return proposals, err
	}

	return proposals, nil
}

func scanProposal(scan func(...any) error) (*entity.Proposal, error) {
	var p entity.Proposal
	var evaluation, aiEvaluation, complianceDocs []byte
	var submittedAt, reviewedAt, acceptedAt, rejectedAt, withdrawnAt *time.Time
	err := scan(
		&p.Id, &p.MarketRequestId, &p.VendorId, &p.ProposedItem, &p.Quantity,
		&p.UnitPrice, &p.TotalPrice, &p.Currency, &p.DeliveryDate, &p.Status,
		&evaluation, &aiEvaluation, &complianceDocs, &p.VendorNotes, &p.ManagerNotes,
		&p.RejectionReason, &submittedAt, &reviewedAt, &acceptedAt, &rejectedAt,
		&withdrawnAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.SubmittedAt = submittedAt
	p.ReviewedAt = reviewedAt
	p.AcceptedAt = acceptedAt
	p.RejectedAt = rejectedAt
	p.WithdrawnAt = withdrawnAt
	if len(evaluation) > 0 {
		p.Evaluation = &entity.Evaluation{}
		if err = scanJSON(evaluation, p.Evaluation); err != nil {
			return nil, err
		}
	}
	if len(aiEvaluation) > 0 {
		p.AIEvaluation = &entity.AIEvaluation{}
		if err = scanJSON(aiEvaluation, p.AIEvaluation); err != nil {
			return nil, err
		}
	}
	if err = scanJSON(complianceDocs, &p.ComplianceDocs); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *ProposalRepo) UpdateDraftProposal(ctx context.Context, id uuid.UUID, input *entity.UpdateProposalInput, totalPrice *decimal.Decimal) error {
	builder := r.SqlBuilder.Update("proposal").
		Where("id = ?", id).
		Where("status = ?", common.ProposalDraft)

	if input.ProposedItem != nil {
		builder = builder.Set("proposed_item", *input.ProposedItem)
	}
	if input.Quantity != nil {
		builder = builder.Set("quantity", *input.Quantity)
	}
	if input.UnitPrice != nil {
		builder = builder.Set("unit_price", *input.UnitPrice)
	}
	if totalPrice != nil {
		builder = builder.Set("total_price", *totalPrice)
	}
	if input.Currency != nil {
		builder = builder.Set("currency", *input.Currency)
	}
	if input.DeliveryDate != nil {
		builder = builder.Set("delivery_date", *input.DeliveryDate)
	}
	if input.ComplianceDocs != nil {
		builder = builder.Set("compliance_documents", mustJSON(input.ComplianceDocs))
	}
	if input.VendorNotes != nil {
		builder = builder.Set("vendor_notes", *input.VendorNotes)
	}

	updateSql, args, _ := builder.ToSql()

	return requireAffected(r.Database.ExecContext(ctx, updateSql, args...))
}

func (r *ProposalRepo) DeleteDraftProposal(ctx context.Context, id uuid.UUID) error {
	deleteSql, args, _ := r.SqlBuilder.
		Delete("proposal").
		Where("id = ?", id).
		Where("status = ?", common.ProposalDraft).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, deleteSql, args...))
}

// SubmitProposal re-checks, inside the update itself, that the proposal is
// still a draft and that its market request is still open and unexpired; a
// draft can go stale between creation and submission.
func (r *ProposalRepo) SubmitProposal(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID, now time.Time) error {
	submitSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("status", common.ProposalSubmitted).
		Set("submitted_at", now).
		Where("id = ?", id).
		Where("status = ?", common.ProposalDraft).
		Where(squirrel.Expr("EXISTS (SELECT 1 FROM market_request WHERE id = ? AND status = ? AND deadline >= ?)",
			marketRequestId, common.MarketOpen, now)).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, submitSql, args...))
}

func (r *ProposalRepo) WithdrawProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	withdrawSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("status", common.ProposalWithdrawn).
		Set("vendor_notes", reason).
		Set("withdrawn_at", now).
		Where("id = ?", id).
		Where(squirrel.Eq{"status": []string{common.ProposalSubmitted, common.ProposalUnderReview}}).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, withdrawSql, args...))
}

// EvaluateProposal writes the scoring block and the submitted→under_review
// transition in one guarded update; scoring always advances the status.
func (r *ProposalRepo) EvaluateProposal(ctx context.Context, id uuid.UUID, evaluation *entity.Evaluation, now time.Time) error {
	raw, err := jsonColumn(evaluation)
	if err != nil {
		return err
	}

	evaluateSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("status", common.ProposalUnderReview).
		Set("evaluation", raw).
		Set("reviewed_at", now).
		Where("id = ?", id).
		Where("status = ?", common.ProposalSubmitted).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, evaluateSql, args...))
}

func (r *ProposalRepo) RejectProposal(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	rejectSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("status", common.ProposalRejected).
		Set("rejection_reason", reason).
		Set("rejected_at", now).
		Where("id = ?", id).
		Where(squirrel.Eq{"status": []string{common.ProposalSubmitted, common.ProposalUnderReview}}).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, rejectSql, args...))
}

// AcceptAndAward serializes the award race on the market request row: the
// open→awarded flip is the authoritative write, and of two concurrent calls
// exactly one sees an open row. The proposal flip follows in the same
// transaction.
func (r *ProposalRepo) AcceptAndAward(ctx context.Context, marketRequestId, proposalId uuid.UUID, allowedStatuses []string, now time.Time) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	awardSql, args, _ := r.SqlBuilder.
		Update("market_request").
		Set("status", common.MarketAwarded).
		Set("winning_proposal_id", proposalId).
		Set("awarded_at", now).
		Where("id = ?", marketRequestId).
		Where("status = ?", common.MarketOpen).
		ToSql()

	if err = requireAffected(tx.ExecContext(ctx, awardSql, args...)); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	acceptSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("status", common.ProposalAccepted).
		Set("accepted_at", now).
		Where("id = ?", proposalId).
		Where("market_request_id = ?", marketRequestId).
		Where(squirrel.Eq{"status": allowedStatuses}).
		ToSql()

	if err = requireAffected(tx.ExecContext(ctx, acceptSql, args...)); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	return tx.Commit()
}

// SetAIEvaluation overwrites the oracle block unconditionally; it is a
// status-independent annotation.
func (r *ProposalRepo) SetAIEvaluation(ctx context.Context, id uuid.UUID, evaluation *entity.AIEvaluation) error {
	raw, err := jsonColumn(evaluation)
	if err != nil {
		return err
	}

	setSql, args, _ := r.SqlBuilder.
		Update("proposal").
		Set("ai_evaluation", raw).
		Where("id = ?", id).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, setSql, args...))
}
