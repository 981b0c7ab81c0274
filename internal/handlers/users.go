package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

// UserDataHandler отдает данные конкретного пользователя через AccessGate:
// клиенту только свои, сотруднику продаж любые.
type UserDataHandler struct {
	Profiles        *repository.ProfileRepository
	Documents       *repository.DocumentRepository
	Recommendations *repository.RecommendationRepository
}

// NewUserDataHandler создает обработчик данных пользователя.
func NewUserDataHandler(profiles *repository.ProfileRepository, documents *repository.DocumentRepository, recommendations *repository.RecommendationRepository) *UserDataHandler {
	return &UserDataHandler{
		Profiles:        profiles,
		Documents:       documents,
		Recommendations: recommendations,
	}
}

// Profile возвращает анкету пользователя.
func (h *UserDataHandler) Profile(c echo.Context) error {
	ownerID, err := authorizeOwnerParam(c)
	if err != nil {
		return respondError(c, err, "user not found")
	}

	profile, err := h.Profiles.GetByUserID(c.Request().Context(), ownerID)
	if err != nil {
		return respondError(c, err, "profile not found")
	}

	return c.JSON(http.StatusOK, profile)
}

// ListDocuments возвращает документы пользователя.
func (h *UserDataHandler) ListDocuments(c echo.Context) error {
	ownerID, err := authorizeOwnerParam(c)
	if err != nil {
		return respondError(c, err, "user not found")
	}

	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	docs, err := h.Documents.ListByUser(c.Request().Context(), ownerID, limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, DocumentListResponse{Documents: docs})
}

// ListRecommendations возвращает рекомендации пользователя.
func (h *UserDataHandler) ListRecommendations(c echo.Context) error {
	ownerID, err := authorizeOwnerParam(c)
	if err != nil {
		return respondError(c, err, "user not found")
	}

	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	recs, err := h.Recommendations.ListByUser(c.Request().Context(), ownerID, limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, RecommendationListResponse{Recommendations: recs})
}

// authorizeOwnerParam reads :userId and checks it against the principal.
func authorizeOwnerParam(c echo.Context) (uuid.UUID, error) {
	principal, _ := access.PrincipalFromContext(c)

	ownerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return uuid.Nil, repository.ErrNotFound
	}

	if err := access.Authorize(principal, ownerID); err != nil {
		return uuid.Nil, err
	}
	return ownerID, nil
}
