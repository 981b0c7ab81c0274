package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
)

var userColumnNames = []string{"id", "email", "password_hash", "first_name", "last_name", "role", "created_at", "updated_at"}

func strPtr(s string) *string { return &s }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// TestUserRepositoryCreate проверяет создание пользователя с ролью.
func TestUserRepositoryCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("driver@example.com", "hash", strPtr("Ava"), (*string)(nil), "user").
		WillReturnRows(pgxmock.NewRows(userColumnNames).
			AddRow(id, "driver@example.com", "hash", strPtr("Ava"), (*string)(nil), "user", now, now))

	user, err := repo.Create(context.Background(), NewUser{
		Email:        "driver@example.com",
		PasswordHash: "hash",
		FirstName:    strPtr("Ava"),
		Role:         access.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, access.RoleUser, user.Role)
	assert.Equal(t, "Ava", user.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "user").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), NewUser{Email: "dup@example.com", PasswordHash: "hash", Role: access.RoleUser})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUserRepositoryCreateRejectsUnknownRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	_, err := repo.Create(context.Background(), NewUser{Email: "x@example.com", PasswordHash: "hash", Role: "admin"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetByEmailNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	id := uuid.New()
	mock.ExpectExec("UPDATE users SET role").
		WithArgs(id, "sales").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateRole(context.Background(), id, access.RoleSales))

	mock.ExpectExec("UPDATE users SET role").
		WithArgs(id, "sales").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, repo.UpdateRole(context.Background(), id, access.RoleSales), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
