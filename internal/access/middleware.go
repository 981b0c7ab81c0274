package access

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const ContextPrincipalKey = "principal"

// SetPrincipal сохраняет принципала в контексте запроса.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(ContextPrincipalKey, &p)
}

// PrincipalFromContext извлекает принципала из контекста.
func PrincipalFromContext(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(ContextPrincipalKey).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// RequireAuthenticated отклоняет запросы без принципала.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := PrincipalFromContext(c); !ok {
				recordDenial("unauthenticated")
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole пропускает только принципалов с указанной ролью.
func RequireRole(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c)
			if !ok {
				recordDenial("unauthenticated")
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if p.Role != role {
				recordDenial("role")
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
