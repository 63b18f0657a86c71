package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ourtime-api/core/database"
	"ourtime-api/core/errors"
	"ourtime-api/modules/auth/entity"
)

type UserRepository struct {
	DB database.IDatabase
}

type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
}

func NewUserRepository(db database.IDatabase) UserRepositoryInterface {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (id, email, nickname, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, nickname, password_hash, is_active, created_at, updated_at`

	var created entity.User
	err := r.DB.GetContext(ctx, &created, query,
		uuid.New(), user.Email, user.Nickname, user.PasswordHash, true)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "email already registered", err)
		}
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, email, nickname, password_hash, is_active, created_at, updated_at
		FROM users WHERE id = $1`
	err := r.DB.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	query := `SELECT id, email, nickname, password_hash, is_active, created_at, updated_at
		FROM users WHERE email = lower($1)`
	err := r.DB.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
