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

type MarketRequestRepo struct {
	*postgres.Postgres
}

func NewMarketRequestRepo(pgdb *postgres.Postgres) *MarketRequestRepo {
	return &MarketRequestRepo{pgdb}
}

const marketColumns = "id, title, description, category, specifications, status, rfp_request_id, created_by, organization_id, quantity, max_budget, currency, deadline, delivery_location, requirements, evaluation_criteria, proposals_count, views_count, winning_proposal_id, cancellation_reason, closed_at, awarded_at, created_at"

func (r *MarketRequestRepo) CreateMarketRequest(ctx context.Context, m *entity.MarketRequest) (uuid.UUID, error) {
	createSql, args, _ := r.SqlBuilder.
		Insert("market_request").
		Columns("title", "description", "category", "specifications", "status", "rfp_request_id", "created_by", "organization_id",
			"quantity", "max_budget", "currency", "deadline", "delivery_location", "requirements", "evaluation_criteria").
		Values(m.Title, m.Description, m.Category, m.Specifications, common.MarketOpen, m.RFPRequestId, m.CreatedById, m.OrganizationId,
			m.Quantity, m.MaxBudget, m.Currency, m.Deadline, m.DeliveryLocation, mustJSON(m.Requirements), mustJSON(m.EvaluationCriteria)).
		Suffix("RETURNING id").
		ToSql()

	var id uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createSql, args...).Scan(&id); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

// DeleteMarketRequest exists only to compensate a failed convertToMarket.
func (r *MarketRequestRepo) DeleteMarketRequest(ctx context.Context, id uuid.UUID) error {
	deleteSql, args, _ := r.SqlBuilder.
		Delete("market_request").
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, deleteSql, args...)

	return translateError(err)
}

func (r *MarketRequestRepo) GetMarketRequestById(ctx context.Context, id uuid.UUID) (*entity.MarketRequest, error) {
	getSql, args, _ := r.SqlBuilder.
		Select(marketColumns).
		From("market_request").
		Where("id = ?", id).
		ToSql()

	row := r.Database.QueryRowContext(ctx, getSql, args...)
	m, err := scanMarketRequest(row.Scan)
	if err != nil {
		return nil, translateError(err)
	}

	return m, nil
}

func (r *MarketRequestRepo) GetOpenMarketRequests(ctx context.Context, filter *entity.MarketFilter, pg *entity.PaginationInput) ([]entity.MarketRequest, error) {
	builder := r.SqlBuilder.
		Select(marketColumns).
		From("market_request").
		Where("status = ?", common.MarketOpen)

	if filter != nil {
		if filter.Category != "" {
			builder = builder.Where("category = ?", filter.Category)
		}
		if filter.MaxBudget != nil {
			builder = builder.Where("max_budget <= ?", *filter.MaxBudget)
		}
	}

	listSql, args, _ := builder.
		OrderBy("deadline ASC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryMarketRequests(ctx, listSql, args)
}

func (r *MarketRequestRepo) GetMarketRequestsByOrganization(ctx context.Context, organizationId uuid.UUID, pg *entity.PaginationInput) ([]entity.MarketRequest, error) {
	listSql, args, _ := r.SqlBuilder.
		Select(marketColumns).
		From("market_request").
		Where("organization_id = ?", organizationId).
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	return r.queryMarketRequests(ctx, listSql, args)
}

func (r *MarketRequestRepo) queryMarketRequests(ctx context.Context, query string, args []interface{}) ([]entity.MarketRequest, error) {
	rows, err := r.Database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]entity.MarketRequest, 0)
	for rows.Next() {
		m, err := scanMarketRequest(rows.Scan)
		if err != nil {
			return requests, err
		}
		requests = append(requests, *m)
	}
	if err = rows.Err(); err != nil {
		return requests, err
	}

	return requests, nil
}

func scanMarketRequest(scan func(...any) error) (*entity.MarketRequest, error) {
	var m entity.MarketRequest
	var requirements, criteria []byte
	var winningProposalId uuid.NullUUID
	var closedAt, awardedAt *time.Time
	err := scan(
		&m.Id, &m.Title, &m.Description, &m.Category, &m.Specifications, &m.Status,
		&m.RFPRequestId, &m.CreatedById, &m.OrganizationId, &m.Quantity, &m.MaxBudget,
		&m.Currency, &m.Deadline, &m.DeliveryLocation, &requirements, &criteria,
		&m.ProposalsCount, &m.ViewsCount, &winningProposalId, &m.CancellationReason,
		&closedAt, &awardedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if winningProposalId.Valid {
		m.WinningProposalId = &winningProposalId.UUID
	}
	m.ClosedAt = closedAt
	m.AwardedAt = awardedAt
	if err = scanJSON(requirements, &m.Requirements); err != nil {
		return nil, err
	}
	if err = scanJSON(criteria, &m.EvaluationCriteria); err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *MarketRequestRepo) UpdateOpenMarketRequest(ctx context.Context, id uuid.UUID, input *entity.UpdateMarketInput) error {
	builder := r.SqlBuilder.Update("market_request").
		Where("id = ?", id).
		Where("status = ?", common.MarketOpen)

	if input.Title != nil {
		builder = builder.Set("title", *input.Title)
	}
	if input.Description != nil {
		builder = builder.Set("description", *input.Description)
	}
	if input.Specifications != nil {
		builder = builder.Set("specifications", *input.Specifications)
	}
	if input.Quantity != nil {
		builder = builder.Set("quantity", *input.Quantity)
	}
	if input.MaxBudget != nil {
		builder = builder.Set("max_budget", *input.MaxBudget)
	}
	if input.Currency != nil {
		builder = builder.Set("currency", *input.Currency)
	}
	if input.Deadline != nil {
		builder = builder.Set("deadline", *input.Deadline)
	}
	if input.DeliveryLocation != nil {
		builder = builder.Set("delivery_location", *input.DeliveryLocation)
	}
	if input.Requirements != nil {
		builder = builder.Set("requirements", mustJSON(input.Requirements))
	}
	if input.EvaluationCriteria != nil {
		builder = builder.Set("evaluation_criteria", mustJSON(input.EvaluationCriteria))
	}

	updateSql, args, _ := builder.ToSql()

	return requireAffected(r.Database.ExecContext(ctx, updateSql, args...))
}

func (r *MarketRequestRepo) CloseMarketRequest(ctx context.Context, id uuid.UUID, reason string, now time.Time) error {
	closeSql, args, _ := r.SqlBuilder.
		Update("market_request").
		Set("status", common.MarketClosed).
		Set("cancellation_reason", reason).
		Set("closed_at", now).
		Where("id = ?", id).
		Where("status = ?", common.MarketOpen).
		ToSql()

	return requireAffected(r.Database.ExecContext(ctx, closeSql, args...))
}

// RecordVendorView writes the first-view entry for a vendor and bumps
// views_count in the same transaction. Later views hit the conflict clause
// and leave both untouched.
func (r *MarketRequestRepo) RecordVendorView(ctx context.Context, marketRequestId, vendorId uuid.UUID, now time.Time) (bool, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	insertSql, args, _ := r.SqlBuilder.
		Insert("market_request_interest").
		Columns("market_request_id", "vendor_id", "viewed_at", "is_interested").
		Values(marketRequestId, vendorId, now, false).
		Suffix("ON CONFLICT (market_request_id, vendor_id) DO NOTHING").
		ToSql()

	res, err := tx.ExecContext(ctx, insertSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return false, e
		}

		return false, translateError(err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return false, e
		}

		return false, err
	}

	if inserted > 0 {
		bumpSql, args, _ := r.SqlBuilder.
			Update("market_request").
			Set("views_count", squirrel.Expr("views_count + 1")).
			Where("id = ?", marketRequestId).
			ToSql()

		if _, err = tx.ExecContext(ctx, bumpSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return false, e
			}

			return false, translateError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return inserted > 0, nil
}

// UpsertVendorInterest updates the vendor's entry in place, or inserts it
// and bumps views_count the same way a first view does.
func (r *MarketRequestRepo) UpsertVendorInterest(ctx context.Context, marketRequestId, vendorId uuid.UUID, isInterested bool, now time.Time) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	upsertSql, args, _ := r.SqlBuilder.
		Insert("market_request_interest").
		Columns("market_request_id", "vendor_id", "viewed_at", "is_interested").
		Values(marketRequestId, vendorId, now, isInterested).
		Suffix("ON CONFLICT (market_request_id, vendor_id) DO UPDATE SET is_interested = EXCLUDED.is_interested RETURNING (xmax = 0)").
		ToSql()

	var inserted bool
	if err = tx.QueryRowContext(ctx, upsertSql, args...).Scan(&inserted); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return translateError(err)
	}

	if inserted {
		bumpSql, args, _ := r.SqlBuilder.
			Update("market_request").
			Set("views_count", squirrel.Expr("views_count + 1")).
			Where("id = ?", marketRequestId).
			ToSql()

		if _, err = tx.ExecContext(ctx, bumpSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return translateError(err)
		}
	}

	return tx.Commit()
}

func (r *MarketRequestRepo) GetVendorInterest(ctx context.Context, marketRequestId uuid.UUID) ([]entity.VendorInterest, error) {
	listSql, args, _ := r.SqlBuilder.
		Select("vendor_id", "viewed_at", "is_interested").
		From("market_request_interest").
		Where("market_request_id = ?", marketRequestId).
		OrderBy("viewed_at ASC").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, listSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interest := make([]entity.VendorInterest, 0)
	for rows.Next() {
		var vi entity.VendorInterest
		if err := rows.Scan(&vi.VendorId, &vi.ViewedAt, &vi.IsInterested); err != nil {
			return interest, err
		}
		interest = append(interest, vi)
	}
	if err = rows.Err(); err != nil {
		return interest, err
	}

	return interest, nil
}
