package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at, updated_at`

type UserRepository struct {
	db DB
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Role         access.Role
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает пользователя в базе.
func (r *UserRepository) Create(ctx context.Context, input NewUser) (models.User, error) {
	if !input.Role.Valid() {
		return models.User{}, ErrInvalid
	}

	user, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		input.Email, input.PasswordHash, input.FirstName, input.LastName, string(input.Role),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return user, ErrConflict
		}
		return user, eris.Wrap(err, "repository: create user")
	}

	return user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE email = $1`,
		email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, eris.Wrap(err, "repository: get user by email")
	}

	return user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, eris.Wrap(err, "repository: get user")
	}

	return user, nil
}

// UpdateRole меняет роль пользователя. Используется только из CLI.
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role access.Role) error {
	if !role.Valid() {
		return ErrInvalid
	}

	cmd, err := r.db.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		id, string(role),
	)
	if err != nil {
		return eris.Wrap(err, "repository: update role")
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var role string

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return user, err
	}

	user.Role = access.Role(role)
	return user, nil
}
