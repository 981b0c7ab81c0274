package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/ai"
	"github.com/AjayAlluri/Toyota-Financing/internal/cache"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/notifications"
	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

type QuoteHandler struct {
	Service         *ai.Service
	Cache           *cache.QuoteCache
	Profiles        *repository.ProfileRepository
	Recommendations *repository.RecommendationRepository
	AIRepo          *repository.AIRepository
	Notifier        *notifications.Hub
}

// NewQuoteHandler создает обработчик подбора автомобилей.
func NewQuoteHandler(
	service *ai.Service,
	quoteCache *cache.QuoteCache,
	profiles *repository.ProfileRepository,
	recommendations *repository.RecommendationRepository,
	aiRepo *repository.AIRepository,
	notifier *notifications.Hub,
) *QuoteHandler {
	return &QuoteHandler{
		Service:         service,
		Cache:           quoteCache,
		Profiles:        profiles,
		Recommendations: recommendations,
		AIRepo:          aiRepo,
		Notifier:        notifier,
	}
}

type QuoteResponse struct {
	Recommendation models.Recommendation `json:"recommendation"`
	Normalized     bool                  `json:"normalized"`
	Cached         bool                  `json:"cached"`
	Plans          []quote.Plan          `json:"plans,omitempty"`
}

// Create сохраняет анкету, получает три варианта от модели, упорядочивает их
// по цене и считает платежи по кредиту и лизингу.
func (h *QuoteHandler) Create(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	profile, err := h.Profiles.Upsert(ctx, req.toModel(*principal))
	if err != nil {
		return respondError(c, err, "")
	}

	input := profileInput(profile)
	doc, normalized, cached, err := h.recommend(ctx, principal.ID, input)
	if err != nil {
		return badGateway(c, "recommendation service unavailable")
	}

	data, err := doc.Bytes()
	if err != nil {
		return respondError(c, err, "")
	}

	rec, err := h.Recommendations.Create(ctx, models.Recommendation{
		UserID:      principal.ID,
		BudgetCar:   slotSummary(doc, quote.SlotBudget),
		BalancedCar: slotSummary(doc, quote.SlotBalanced),
		PremiumCar:  slotSummary(doc, quote.SlotPremium),
		Normalized:  normalized,
		Data:        data,
	})
	if err != nil {
		return respondError(c, err, "")
	}

	response := QuoteResponse{
		Recommendation: rec,
		Normalized:     normalized,
		Cached:         cached,
		Plans:          plansFor(doc, profile.DownPayment),
	}

	h.Notifier.Publish(notifications.UserTopic(principal.ID), notifications.Event{
		Type: notifications.EventQuoteReady,
		Data: map[string]interface{}{
			"recommendation_id": rec.ID.String(),
			"normalized":        normalized,
		},
	})
	publishLeadUpdate(h.Notifier, principal.ID, "recommendation", rec.ID)

	return c.JSON(http.StatusCreated, response)
}

func (h *QuoteHandler) recommend(ctx context.Context, userID uuid.UUID, input ai.ProfileInput) (quote.Document, bool, bool, error) {
	requestPayload, _ := json.Marshal(input)

	key, keyErr := cache.Key(input)
	if keyErr == nil {
		if entry, hit := h.Cache.Get(ctx, key); hit {
			doc, err := quote.ParseDocument(entry.Document)
			if err == nil {
				h.logAIRequest(ctx, repository.AIRequestLog{
					UserID:          userID,
					Provider:        entry.Provider,
					Model:           entry.Model,
					RequestPayload:  requestPayload,
					ResponsePayload: entry.Document,
					Success:         true,
					Cached:          true,
				})
				return doc, entry.Normalized, true, nil
			}
		}
	}

	result, err := h.Service.RecommendVehicles(ctx, input)
	log := repository.AIRequestLog{
		UserID:         userID,
		Provider:       h.Service.Provider(),
		Model:          h.Service.Model(),
		Prompt:         result.Prompt,
		RequestPayload: requestPayload,
		RawResponse:    string(result.Raw),
		Success:        err == nil,
		Latency:        result.Latency,
	}
	if err != nil {
		message := err.Error()
		log.ErrorMessage = &message
		h.logAIRequest(ctx, log)
		zap.L().Warn("vehicle recommendation failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, false, false, err
	}

	data, err := result.Document.Bytes()
	if err != nil {
		return nil, false, false, err
	}
	log.ResponsePayload = data
	h.logAIRequest(ctx, log)

	if keyErr == nil {
		h.Cache.Set(ctx, key, cache.Entry{
			Document:   data,
			Normalized: result.Normalized,
			Provider:   h.Service.Provider(),
			Model:      h.Service.Model(),
		})
	}

	return result.Document, result.Normalized, false, nil
}

func (h *QuoteHandler) logAIRequest(ctx context.Context, log repository.AIRequestLog) {
	log.RequestType = repository.RequestTypeVehicleQuote
	if err := h.AIRepo.LogRequest(ctx, log); err != nil {
		zap.L().Warn("ai request log failed", zap.Error(err))
	}
}

// slotSummary returns "<year> <make> <model> <trim>" for a slot or an empty
// string when the slot is missing or does not decode.
func slotSummary(doc quote.Document, slot string) string {
	raw, ok := doc[slot]
	if !ok {
		return ""
	}

	var offer quote.VehicleOffer
	if err := json.Unmarshal(raw, &offer); err != nil {
		return ""
	}
	return offer.Summary()
}

func plansFor(doc quote.Document, downPayment float64) []quote.Plan {
	tiers, err := doc.Tiers()
	if err != nil {
		return nil
	}

	plans, err := quote.Plans(tiers, downPayment)
	if err != nil {
		zap.L().Debug("plans skipped", zap.Error(err))
		return nil
	}
	return plans
}

func publishLeadUpdate(hub *notifications.Hub, userID uuid.UUID, kind string, id uuid.UUID) {
	hub.Publish(notifications.SalesTopic, notifications.Event{
		Type: notifications.EventLeadUpdated,
		Data: map[string]interface{}{
			"user_id": userID.String(),
			"kind":    kind,
			"id":      id.String(),
		},
	})
}
