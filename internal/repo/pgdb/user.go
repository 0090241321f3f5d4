package pgdb

import (
	"context"
	"time"

	"procurement-marketplace-api/internal/entity"
	"procurement-marketplace-api/pkg/postgres"

	"github.com/google/uuid"
)

type UserRepo struct {
	*postgres.Postgres
}

func NewUserRepo(pgdb *postgres.Postgres) *UserRepo {
	return &UserRepo{pgdb}
}

const userColumns = "id, email, password_hash, name, role, organization_id, manager_id, permissions, is_active, is_email_verified, login_attempts, lock_until, last_login_at, created_at"

func (r *UserRepo) CreateUser(ctx context.Context, input *entity.CreateUserInput, passwordHash string) (uuid.UUID, error) {
	createUserSql, args, _ := r.SqlBuilder.
		Insert("org_user").
		Columns("email", "password_hash", "name", "role", "organization_id", "manager_id", "permissions", "is_active").
		Values(input.Email, passwordHash, input.Name, input.Role, input.OrganizationId, input.ManagerId, []byte("[]"), true).
		Suffix("RETURNING id").
		ToSql()

	var id uuid.UUID
	if err := r.Database.QueryRowContext(ctx, createUserSql, args...).Scan(&id); err != nil {
		return uuid.Nil, translateError(err)
	}

	return id, nil
}

func (r *UserRepo) GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	getUserSql, args, _ := r.SqlBuilder.
		Select(userColumns).
		From("org_user").
		Where("id = ?", id).
		ToSql()

	return r.scanUser(ctx, getUserSql, args)
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	getUserSql, args, _ := r.SqlBuilder.
		Select(userColumns).
		From("org_user").
		Where("lower(email) = lower(?)", email).
		ToSql()

	return r.scanUser(ctx, getUserSql, args)
}

func (r *UserRepo) scanUser(ctx context.Context, query string, args []interface{}) (*entity.User, error) {
	var u entity.User
	var managerId uuid.NullUUID
	var permissions []byte
	var lockUntil, lastLoginAt *time.Time
	err := r.Database.QueryRowContext(ctx, query, args...).Scan(
		&u.Id, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.OrganizationId,
		&managerId, &permissions, &u.IsActive, &u.IsEmailVerified,
		&u.LoginAttempts, &lockUntil, &lastLoginAt, &u.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	if managerId.Valid {
		u.ManagerId = &managerId.UUID
	}
	u.LockUntil = lockUntil
	u.LastLoginAt = lastLoginAt
	if err = scanJSON(permissions, &u.Permissions); err != nil {
		return nil, err
	}

	return &u, nil
}

// UpdateUser applies the admin-driven member mutation; members are
// deactivated through IsActive, never deleted.
func (r *UserRepo) UpdateUser(ctx context.Context, id uuid.UUID, input *entity.UpdateUserInput) error {
	builder := r.SqlBuilder.Update("org_user").Where("id = ?", id)
	if input.Role != nil {
		builder = builder.Set("role", *input.Role)
	}
	if input.ManagerId != nil {
		builder = builder.Set("manager_id", *input.ManagerId)
	}
	if input.IsActive != nil {
		builder = builder.Set("is_active", *input.IsActive)
	}

	updateUserSql, args, _ := builder.ToSql()

	return requireAffected(r.Database.ExecContext(ctx, updateUserSql, args...))
}

func (r *UserRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockUntil *time.Time) error {
	recordSql, args, _ := r.SqlBuilder.
		Update("org_user").
		Set("login_attempts", attempts).
		Set("lock_until", lockUntil).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, recordSql, args...)

	return translateError(err)
}

func (r *UserRepo) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	recordSql, args, _ := r.SqlBuilder.
		Update("org_user").
		Set("login_attempts", 0).
		Set("lock_until", nil).
		Set("last_login_at", at).
		Where("id = ?", id).
		ToSql()

	_, err := r.Database.ExecContext(ctx, recordSql, args...)

	return translateError(err)
}
