package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCanAccess проверяет матрицу доступа по ролям.
func TestCanAccess(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name      string
		principal Principal
		ownerID   uuid.UUID
		want      bool
	}{
		{name: "user reads own data", principal: Principal{ID: owner, Role: RoleUser}, ownerID: owner, want: true},
		{name: "user reads foreign data", principal: Principal{ID: other, Role: RoleUser}, ownerID: owner, want: false},
		{name: "sales reads any data", principal: Principal{ID: other, Role: RoleSales}, ownerID: owner, want: true},
		{name: "sales reads own data", principal: Principal{ID: owner, Role: RoleSales}, ownerID: owner, want: true},
		{name: "unknown role", principal: Principal{ID: owner, Role: Role("admin")}, ownerID: owner, want: false},
		{name: "empty role", principal: Principal{ID: owner}, ownerID: owner, want: false},
		{name: "nil ids", principal: Principal{Role: RoleUser}, ownerID: uuid.Nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.principal, tc.ownerID))
		})
	}
}

func TestAuthorize(t *testing.T) {
	owner := uuid.New()

	require.ErrorIs(t, Authorize(nil, owner), ErrUnauthenticated)
	require.ErrorIs(t, Authorize(&Principal{ID: uuid.New(), Role: RoleUser}, owner), ErrForbidden)
	require.NoError(t, Authorize(&Principal{ID: owner, Role: RoleUser}, owner))
	require.NoError(t, Authorize(&Principal{ID: uuid.New(), Role: RoleSales}, owner))
}

// TestAuthorizeOwner проверяет, что изменять данные может только владелец.
func TestAuthorizeOwner(t *testing.T) {
	owner := uuid.New()

	require.ErrorIs(t, AuthorizeOwner(nil, owner), ErrUnauthenticated)
	require.ErrorIs(t, AuthorizeOwner(&Principal{ID: uuid.New(), Role: RoleSales}, owner), ErrForbidden)
	require.NoError(t, AuthorizeOwner(&Principal{ID: owner, Role: RoleUser}, owner))
	assert.True(t, IsOwner(Principal{ID: owner, Role: RoleSales}, owner))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Sales ")
	require.NoError(t, err)
	assert.Equal(t, RoleSales, role)

	role, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	_, err = ParseRole("admin")
	require.ErrorIs(t, err, ErrUnknownRole)
}
