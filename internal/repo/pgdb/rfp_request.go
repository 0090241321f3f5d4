package pgdb

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/common"
	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type RFPRequestRepo struct {
	*postgres.Postgres
}

func NewRFPRequestRepo(pgdb *postgres.Postgres) *RFPRequestRepo {
	return &RFPRequestRepo{pgdb}
}

const rfpColumns = "id, title, description, category, urgency, budget_estimate, justification, status, requested_by, organization_id, manager_id, market_request_id, review_note, reviewed_at, created_at"

func (r *RFPRequestRepo) CreateRFPRequest(ctx context.Context, input *entity.CreateRFPInput) (uuid.UUID, error) {
	createSql, args, _ := r.SqlBuilder.
		Insert("rfp_request").
		Columns("title", "description", "category", "urgency", "budget_estimate", "justification", "status", "requested_by", "organization_id", "manager_id").
		Values(input.Title, input.Description, input.Category, input.Urgency, input.BudgetEstimate,
			input.Justification, common.RFPPending, input.RequestedById, input.OrganizationId, input.ManagerId).
		Suffix("RETURNING id").
		ToSql()

	var id uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createSql, args...).Scan(&id); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

func (r *RFPRequestRepo) GetRFPRequestById(ctx context.Context, id uuid.UUID) (*entity.RFPRequest, error) {
	getSql, args, _ := r.SqlBuilder.
		Select(rfpColumns).
		From("rfp_request").
		Where("id = ?", id).
		ToSql()

	row := r.Database.QueryRowContext(ctx, getSql, args...)
	req, err := scanRFPRequest(row.Scan)
	if err != nil {
		return nil, translateError(err)
	}

	return req, nil
}

func (r *RFPRequestRepo) GetRFPRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, status string, pg *entity.PaginationInput) ([]entity.RFPRequest, error) {
	builder := r.SqlBuilder.
		Select(rfpColumns).
		From("rfp_request").
		Where("organization_id = ?", organizationId)

	if status != "" {
		builder = builder.Where("status = ?", status)
	}

	listSql, args, _ := builder.
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, listSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]entity.RFPRequest, 0)
	for rows.Next() {
		req, err := scanRFPRequest(rows.Scan)
		if err != nil {
			return requests, err
		}
		requests = append(requests, *req)
	}
	if err = rows.Err(); err != nil {
		return requests, err
	}

	return requests, nil
}

func scanRFPRequest(scan func(...any) error) (*entity.RFPRequest, error) {
	var req entity.RFPRequest
	var marketRequestId uuid.NullUUID
	var reviewedAt *time.Time
	err := scan(
		&req.Id, &req.Title, &req.Description, &req.Category, &req.Urgency,
		&req.BudgetEstimate, &req.Justification, &req.Status, &req.RequestedById,
		&req.OrganizationId, &req.ManagerId, &marketRequestId, &req.ReviewNote,
		&reviewedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}

	if marketRequestId.Valid {
		req.MarketRequestId = &marketRequestId.UUID
	}
	req.ReviewedAt = reviewedAt

	return &req, nil
}

func (r *RFPRequestRepo) UpdatePendingRFPRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateRFPInput) error {
	builder := r.SqlBuilder.Update("rfp_request").
		Where("id = ?", id).
		Where("status = ?", common.RFPPending)

	if input.Title != nil {
		builder = builder.Set("title", *input.Title)
	}
	if input.Description != nil {
		builder = builder.Set("description", *input.Description)
	}
	if input.Category != nil {
		builder = builder.Set("category", *input.Category)
	}
	if input.Urgency != nil {
		builder = builder.Set("urgency", *input.Urgency)
	}
	if input.BudgetEstimate != nil {
		builder = builder.Set("budget_estimate", *input.BudgetEstimate)
	}
	if input.Justification != nil {
		builder = builder.Set("justification", *input.Justification)
	}

	updateSql, args, _ := builder.ToSql()

	return requireAffected(r.Database.ExecContext(ctx, updateSql, args...))
}

func (r *RFPRequestRepo) DeletePendingRFPRequest(ctx context.Context, id uuid.UUID) error {
	deleteSql, args, _ := r.SqlBuilder.
		Delete("rfp_request").
		Where("id = ?", id).
		Where("status = ?", common.RFPPending).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, deleteSql, args...))
}

// ReviewRFPRequest re-checks the reviewable status inside the update itself;
// a needs_clarification request stays reviewable, everything else is final.
// reviewed_at keeps its first value across repeated reviews.
func (r *RFPRequestRepo) ReviewRFPRequest(ctx context.Context, id uuid.UUID, decision string, note string, now time.Time) error {
	reviewSql, args, _ := r.SqlBuilder.
		Update("rfp_request").
		Set("status", decision).
		Set("review_note", note).
		Set("reviewed_at", squirrel.Expr("COALESCE(reviewed_at, ?)", now)).
		Where("id = ?", id).
		Where(squirrel.Eq{"status": []string{common.RFPPending, common.RFPNeedsClarification}}).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, reviewSql, args...))
}

func (r *RFPRequestRepo) MarkConverted(ctx context.Context, id uuid.UUID, marketRequestId uuid.UUID) error {
	convertSql, args, _ := r.SqlBuilder.
		Update("rfp_request").
		Set("status", common.RFPConvertedToMarket).
		Set("market_request_id", marketRequestId).
		Where("id = ?", id).
		Where("status = ?", common.RFPApproved).
		Where("market_request_id IS NULL").
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, convertSql, args...))
}
