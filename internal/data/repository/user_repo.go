package repository

import (
	"context"
	"fmt"

	"hyperlocal-marketplace/internal/data/entity"
	"hyperlocal-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindAll(ctx context.Context, role string, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context, role string) (int64, error)
	CountByRole(ctx context.Context, role entity.UserRole) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `
		SELECT id, name, email, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user entity.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context, role string, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT id, name, email, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, role, limit, offset)
	if err != nil {
		r.log.Error("Failed to find users",
			zap.Error(err),
			zap.String("role", role),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Phone,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Failed to read user rows", zap.Error(err))
		return nil, fmt.Errorf("read user rows: %w", err)
	}

	return users, nil
}

func (r *userRepository) CountAll(ctx context.Context, role string) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE ($1 = '' OR role = $1)`

	var count int64
	err := r.db.QueryRow(ctx, query, role).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count users", zap.Error(err), zap.String("role", role))
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role entity.UserRole) (int64, error) {
	return r.CountAll(ctx, string(role))
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		r.log.Error("Failed to set user active flag",
			zap.Error(err),
			zap.String("user_id", id.String()),
			zap.Bool("is_active", isActive),
		)
		return fmt.Errorf("set user %s active flag: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}

	r.log.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}
