package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/finance"
	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
	"github.com/AjayAlluri/Toyota-Financing/internal/storage"
)

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func badGateway(c echo.Context, message string) error {
	return c.JSON(http.StatusBadGateway, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// respondError переводит доменные ошибки в HTTP ответы. Внутренние ошибки
// логируются и не попадают в ответ.
func respondError(c echo.Context, err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, access.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return notFound(c, notFoundMessage)
	case errors.Is(err, repository.ErrConflict):
		return conflict(c, "already exists")
	case errors.Is(err, finance.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, repository.ErrInvalid), errors.Is(err, quote.ErrUnknownTier), errors.Is(err, storage.ErrEmpty):
		return badRequest(c, err.Error())
	case errors.Is(err, quote.ErrIncompleteDocument):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "recommendation is missing a tier"})
	case errors.Is(err, quote.ErrMalformedDocument):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "recommendation offer could not be read"})
	case errors.Is(err, storage.ErrTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file is too large"})
	case errors.Is(err, storage.ErrUnsupportedType):
		return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": "file type is not allowed"})
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return serverError(c)
}
