package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/metrics"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/notifications"
	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

type RecommendationHandler struct {
	Recommendations *repository.RecommendationRepository
	Profiles        *repository.ProfileRepository
	Notifier        *notifications.Hub
}

// NewRecommendationHandler создает обработчик сохраненных рекомендаций.
func NewRecommendationHandler(recommendations *repository.RecommendationRepository, profiles *repository.ProfileRepository, notifier *notifications.Hub) *RecommendationHandler {
	return &RecommendationHandler{
		Recommendations: recommendations,
		Profiles:        profiles,
		Notifier:        notifier,
	}
}

type RecommendationListResponse struct {
	Recommendations []models.Recommendation `json:"recommendations"`
}

type RecommendationDetailResponse struct {
	Recommendation models.Recommendation `json:"recommendation"`
	Plans          []quote.Plan          `json:"plans,omitempty"`
}

type OfferEstimateResponse struct {
	Tier            quote.Tier     `json:"tier"`
	Summary         string         `json:"summary"`
	FinanceEstimate quote.Estimate `json:"finance_estimate"`
	LeaseEstimate   quote.Estimate `json:"lease_estimate"`
}

type SelectionRequest struct {
	Tier string `json:"tier" validate:"required"`
	Plan string `json:"plan" validate:"required,oneof=finance lease"`
}

// List возвращает рекомендации текущего пользователя.
func (h *RecommendationHandler) List(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	recs, err := h.Recommendations.ListByUser(c.Request().Context(), principal.ID, limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, RecommendationListResponse{Recommendations: recs})
}

// Get возвращает рекомендацию владельцу или сотруднику продаж.
func (h *RecommendationHandler) Get(c echo.Context) error {
	rec, err := h.load(c)
	if err != nil {
		return respondError(c, err, "recommendation not found")
	}

	doc, err := quote.ParseDocument(rec.Data)
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, RecommendationDetailResponse{
		Recommendation: rec,
		Plans:          plansFor(doc, h.downPayment(c.Request().Context(), rec.UserID)),
	})
}

// Estimates пересчитывает платежи по одному уровню с параметрами ползунков.
func (h *RecommendationHandler) Estimates(c echo.Context) error {
	rec, err := h.load(c)
	if err != nil {
		return respondError(c, err, "recommendation not found")
	}

	tier, err := quote.ParseTier(c.QueryParam("tier"))
	if err != nil {
		return badRequest(c, "invalid tier")
	}

	sliders, err := parseSliders(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	doc, err := quote.ParseDocument(rec.Data)
	if err != nil {
		return respondError(c, err, "")
	}
	tiers, err := doc.Tiers()
	if err != nil {
		return respondError(c, err, "")
	}
	offer, err := tiers.Offer(tier)
	if err != nil {
		return respondError(c, err, "")
	}

	if sliders.DownPayment == nil {
		downPayment := h.downPayment(c.Request().Context(), rec.UserID)
		sliders.DownPayment = &downPayment
	}

	financeEstimate, leaseEstimate, err := quote.EstimateOffer(offer, sliders)
	if err != nil {
		return respondError(c, err, "")
	}
	metrics.PaymentEstimates.WithLabelValues("offer").Inc()

	return c.JSON(http.StatusOK, OfferEstimateResponse{
		Tier:            tier,
		Summary:         offer.Summary(),
		FinanceEstimate: financeEstimate,
		LeaseEstimate:   leaseEstimate,
	})
}

// Select сохраняет выбранный уровень и тип сделки. Доступно только владельцу.
func (h *RecommendationHandler) Select(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, "recommendation not found")
	}

	var req SelectionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	tier, err := quote.ParseTier(req.Tier)
	if err != nil {
		return badRequest(c, "invalid tier")
	}

	ctx := c.Request().Context()
	rec, err := h.Recommendations.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "recommendation not found")
	}
	if err := access.AuthorizeOwner(principal, rec.UserID); err != nil {
		return respondError(c, err, "")
	}

	updated, err := h.Recommendations.UpdateSelection(ctx, id, string(tier), models.PlanType(req.Plan))
	if err != nil {
		return respondError(c, err, "recommendation not found")
	}

	publishLeadUpdate(h.Notifier, principal.ID, "selection", updated.ID)
	return c.JSON(http.StatusOK, updated)
}

func (h *RecommendationHandler) load(c echo.Context) (models.Recommendation, error) {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return models.Recommendation{}, access.ErrUnauthenticated
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return models.Recommendation{}, repository.ErrNotFound
	}

	rec, err := h.Recommendations.GetByID(c.Request().Context(), id)
	if err != nil {
		return rec, err
	}

	if err := access.Authorize(principal, rec.UserID); err != nil {
		return models.Recommendation{}, err
	}
	return rec, nil
}

// downPayment берет первоначальный взнос из анкеты владельца, 0 если анкеты нет.
func (h *RecommendationHandler) downPayment(ctx context.Context, ownerID uuid.UUID) float64 {
	profile, err := h.Profiles.GetByUserID(ctx, ownerID)
	if err != nil {
		return 0
	}
	return profile.DownPayment
}

func parseSliders(c echo.Context) (quote.Sliders, error) {
	var sliders quote.Sliders

	if raw := strings.TrimSpace(c.QueryParam("down_payment")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sliders, errors.New("invalid down_payment")
		}
		sliders.DownPayment = &value
	}

	ints := []struct {
		name   string
		target **int
	}{
		{"term_months", &sliders.TermMonths},
		{"annual_mileage", &sliders.AnnualMileage},
		{"lease_term_months", &sliders.LeaseTermMonths},
	}
	for _, field := range ints {
		raw := strings.TrimSpace(c.QueryParam(field.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return sliders, errors.New("invalid " + field.name)
		}
		*field.target = &value
	}

	return sliders, nil
}
