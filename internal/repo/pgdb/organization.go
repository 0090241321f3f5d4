package pgdb

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
)

type OrganizationRepo struct {
	*postgres.Postgres
}

func NewOrganizationRepo(pgdb *postgres.Postgres) *OrganizationRepo {
	return &OrganizationRepo{pgdb}
}

// CreateOrganizationWithAdmin performs the registration saga as a single
// transaction: insert organization, insert its first admin user, back-patch
// admin_id. Unique violations on lower(name) or the admin email surface as
// ErrUniqueViolation and roll everything back.
func (r *OrganizationRepo) CreateOrganizationWithAdmin(ctx context.Context, org *entity.Organization, admin *entity.User) (uuid.UUID, uuid.UUID, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	settings, err := jsonColumn(org.Settings)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	createOrgSql, args, _ := r.SqlBuilder.
		Insert("organization").
		Columns("name", "industry", "address", "contact", "is_active", "is_verified", "settings").
		Values(org.Name, org.Industry, org.Address, org.Contact, true, false, settings).
		Suffix("RETURNING id").
		ToSql()

	var orgId uuid.UUID
	if err = tx.QueryRowContext(ctx, createOrgSql, args...).Scan(&orgId); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, uuid.Nil, e
		}

		return uuid.Nil, uuid.Nil, translateError(err)
	}

	createAdminSql, args, _ := r.SqlBuilder.
		Insert("org_user").
		Columns("email", "password_hash", "name", "role", "organization_id", "permissions", "is_active").
		Values(admin.Email, admin.PasswordHash, admin.Name, admin.Role, orgId, mustJSON(admin.Permissions), true).
		Suffix("RETURNING id").
		ToSql()

	var adminId uuid.UUID
	if err = tx.QueryRowContext(ctx, createAdminSql, args...).Scan(&adminId); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, uuid.Nil, e
		}

		return uuid.Nil, uuid.Nil, translateError(err)
	}

	patchAdminSql, args, _ := r.SqlBuilder.
		Update("organization").
		Set("admin_id", adminId).
		Where("id = ?", orgId).
		ToSql()

	if _, err = tx.ExecContext(ctx, patchAdminSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return uuid.Nil, uuid.Nil, e
		}

		return uuid.Nil, uuid.Nil, translateError(err)
	}

	if err = tx.Commit(); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return orgId, adminId, nil
}

func (r *OrganizationRepo) GetOrganizationById(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	getOrgSql, args, _ := r.SqlBuilder.
		Select("id", "name", "industry", "address", "contact", "admin_id", "is_active", "is_verified", "settings", "created_at").
		From("organization").
		Where("id = ?", id).
		ToSql()

	var org entity.Organization
	var adminId uuid.NullUUID
	var settings []byte
	var createdAt time.Time
	err := r.Database.QueryRowContext(ctx, getOrgSql, args...).Scan(
		&org.Id, &org.Name, &org.Industry, &org.Address, &org.Contact,
		&adminId, &org.IsActive, &org.IsVerified, &settings, &createdAt)
	if err != nil {
		return nil, translateError(err)
	}

	org.AdminId = adminId.UUID
	org.CreatedAt = createdAt
	if err = scanJSON(settings, &org.Settings); err != nil {
		return nil, err
	}

	return &org, nil
}
