package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/config"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

var userColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "role", "created_at", "updated_at"}

func newUsers(t *testing.T) (*repository.UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return repository.NewUserRepository(mock), mock
}

func TestProvisionSalesUser(t *testing.T) {
	users, mock := newUsers(t)
	sales := config.SalesConfig{Emails: []string{"closer@dealer.example"}}
	first := "Dana"
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("closer@dealer.example", pgxmock.AnyArg(), &first, (*string)(nil), "sales").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow(uuid.New(), "closer@dealer.example", "hash", &first, (*string)(nil), "sales", now, now))

	user, err := provisionUser(context.Background(), users, sales, accountInput{
		Email:     "  Closer@Dealer.example ",
		Password:  "long-enough",
		FirstName: "Dana",
		Role:      "sales",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleSales, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionRejectsInput(t *testing.T) {
	users, mock := newUsers(t)
	sales := config.SalesConfig{Emails: []string{"closer@dealer.example"}}

	cases := []struct {
		name string
		in   accountInput
	}{
		{"bad email", accountInput{Email: "nobody", Password: "long-enough", Role: "user"}},
		{"short password", accountInput{Email: "a@b.example", Password: "short", Role: "user"}},
		{"unknown role", accountInput{Email: "a@b.example", Password: "long-enough", Role: "admin"}},
		{"sales not allowed", accountInput{Email: "a@b.example", Password: "long-enough", Role: "sales"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := provisionUser(context.Background(), users, sales, tc.in)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionDuplicateUser(t *testing.T) {
	users, mock := newUsers(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "user").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := provisionUser(context.Background(), users, config.SalesConfig{}, accountInput{
		Email:    "driver@example.com",
		Password: "long-enough",
		Role:     "user",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
