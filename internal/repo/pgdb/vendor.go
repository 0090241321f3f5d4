package pgdb

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
)

type VendorRepo struct {
	*postgres.Postgres
}

func NewVendorRepo(pgdb *postgres.Postgres) *VendorRepo {
	return &VendorRepo{pgdb}
}

const vendorColumns = "id, email, password_hash, name, specialization, location, rating, completed_jobs, is_active, login_attempts, lock_until, last_login_at, created_at"

func (r *VendorRepo) CreateVendor(ctx context.Context, input *entity.RegisterVendorInput, passwordHash string) (uuid.UUID, error) {
	createVendorSql, args, _ := r.SqlBuilder.
		Insert("vendor").
		Columns("email", "password_hash", "name", "specialization", "location", "is_active").
		Values(input.Email, passwordHash, input.Name, mustJSON(input.Specialization), input.Location, true).
		Suffix("RETURNING id").
		ToSql()

	var id uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createVendorSql, args...).Scan(&id); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

func (r *VendorRepo) GetVendorById(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	getVendorSql, args, _ := r.SqlBuilder.
		Select(vendorColumns).
		From("vendor").
		Where("id = ?", id).
		ToSql()

	return r.scanVendor(ctx, getVendorSql, args)
}

func (r *VendorRepo) GetVendorByEmail(ctx context.Context, email string) (*entity.Vendor, error) {
	getVendorSql, args, _ := r.SqlBuilder.
		Select(vendorColumns).
		From("vendor").
		Where("lower(email) = lower(?)", email).
		ToSql()

	return r.scanVendor(ctx, getVendorSql, args)
}

func (r *VendorRepo) scanVendor(ctx context.Context, query string, args []interface{}) (*entity.Vendor, error) {
	var v entity.Vendor
	var specialization []byte
	var lockUntil, lastLoginAt *time.Time
	err := r.Database.QueryRowContext(ctx, query, args...).Scan(
		&v.Id, &v.Email, &v.PasswordHash, &v.Name, &specialization, &v.Location,
		&v.Rating, &v.CompletedJobs, &v.IsActive,
		&v.LoginAttempts, &lockUntil, &lastLoginAt, &v.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	v.LockUntil = lockUntil
	v.LastLoginAt = lastLoginAt
	if err = scanJSON(specialization, &v.Specialization); err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *VendorRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error {
	recordSql, args, _ := r.SqlBuilder.
		Update("vendor").
		Set("login_attempts", attempts).
		Set("lock_until", lockUntil).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, recordSql, args...)

	return translateError(err)
}

func (r *VendorRepo) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	recordSql, args, _ := r.SqlBuilder.
		Update("vendor").
		Set("login_attempts", 0).
		Set("lock_until", nil).
		Set("last_login_at", at).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, recordSql, args...)

	return translateError(err)
}
