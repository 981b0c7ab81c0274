package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
)

type staticAuthenticator struct {
	principal access.Principal
	err       error
}

func (a staticAuthenticator) Authenticate(context.Context, string) (access.Principal, error) {
	return a.principal, a.err
}

func serve(t *testing.T, authenticator Authenticator, header string) (*httptest.ResponseRecorder, *access.Principal, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *access.Principal
	err := Middleware(authenticator)(func(c echo.Context) error {
		seen, _ = access.PrincipalFromContext(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, seen, err
}

// TestMiddlewareSetsPrincipal проверяет, что валидный токен дает принципала.
func TestMiddlewareSetsPrincipal(t *testing.T) {
	principal := access.Principal{ID: uuid.New(), Role: access.RoleUser}

	rec, seen, err := serve(t, staticAuthenticator{principal: principal}, "Bearer token")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, principal.ID, seen.ID)
}

func TestMiddlewareRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing header": {header: ""},
		"wrong scheme":   {header: "Basic abc"},
		"empty token":    {header: "Bearer  "},
		"bad token":      {header: "Bearer token", err: errors.New("expired")},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, seen, err := serve(t, staticAuthenticator{err: tc.err}, tc.header)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
			assert.Nil(t, seen)
		})
	}
}
