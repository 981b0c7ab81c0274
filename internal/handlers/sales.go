package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90

	timeLayout = time.RFC3339
	dateLayout = "2006-01-02"
)

type SalesHandler struct {
	Sales           *repository.SalesRepository
	Users           *repository.UserRepository
	Profiles        *repository.ProfileRepository
	Documents       *repository.DocumentRepository
	Recommendations *repository.RecommendationRepository
}

// NewSalesHandler создает обработчик портала отдела продаж.
func NewSalesHandler(
	sales *repository.SalesRepository,
	users *repository.UserRepository,
	profiles *repository.ProfileRepository,
	documents *repository.DocumentRepository,
	recommendations *repository.RecommendationRepository,
) *SalesHandler {
	return &SalesHandler{
		Sales:           sales,
		Users:           users,
		Profiles:        profiles,
		Documents:       documents,
		Recommendations: recommendations,
	}
}

type LeadResponse struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	FirstName           *string   `json:"first_name,omitempty"`
	LastName            *string   `json:"last_name,omitempty"`
	CreatedAt           string    `json:"created_at"`
	HasProfile          bool      `json:"has_profile"`
	DocumentCount       int       `json:"document_count"`
	RecommendationCount int       `json:"recommendation_count"`
	LastRecommendation  *string   `json:"last_recommendation_at,omitempty"`
}

type LeadsResponse struct {
	Total int            `json:"total"`
	Users []LeadResponse `json:"users"`
}

type SalesProfileResponse struct {
	models.FinancialProfile
	OwnerEmail string `json:"owner_email"`
}

type SalesDocumentResponse struct {
	models.Document
	OwnerEmail string `json:"owner_email"`
}

type SalesRecommendationResponse struct {
	models.Recommendation
	OwnerEmail string `json:"owner_email"`
}

type LeadOverviewResponse struct {
	User            AuthUser                 `json:"user"`
	Profile         *models.FinancialProfile `json:"profile,omitempty"`
	Documents       []models.Document        `json:"documents"`
	Recommendations []models.Recommendation  `json:"recommendations"`
}

type SalesStatsDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type SalesStatsResponse struct {
	Leads                int             `json:"leads"`
	SalesStaff           int             `json:"sales_staff"`
	Profiles             int             `json:"profiles"`
	Documents            int             `json:"documents"`
	Recommendations      int             `json:"recommendations"`
	Selections           int             `json:"selections"`
	AIRequests           int             `json:"ai_requests"`
	AISuccess            int             `json:"ai_success"`
	AIFail               int             `json:"ai_fail"`
	RecommendationsByDay []SalesStatsDay `json:"recommendations_by_day"`
}

// ListUsers возвращает клиентов со сводкой активности.
func (h *SalesHandler) ListUsers(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	leads, err := h.Sales.ListLeads(ctx, limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	total, err := h.Sales.CountLeads(ctx)
	if err != nil {
		return respondError(c, err, "")
	}

	response := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		item := LeadResponse{
			ID:                  lead.ID,
			Email:               lead.Email,
			FirstName:           lead.FirstName,
			LastName:            lead.LastName,
			CreatedAt:           lead.CreatedAt.Format(timeLayout),
			HasProfile:          lead.HasProfile,
			DocumentCount:       lead.DocumentCount,
			RecommendationCount: lead.RecommendationCount,
		}
		if lead.LastRecommendation != nil {
			formatted := lead.LastRecommendation.Format(timeLayout)
			item.LastRecommendation = &formatted
		}
		response = append(response, item)
	}

	return c.JSON(http.StatusOK, LeadsResponse{Total: total, Users: response})
}

// ListProfiles возвращает анкеты всех клиентов.
func (h *SalesHandler) ListProfiles(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.Sales.ListProfiles(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	response := make([]SalesProfileResponse, 0, len(records))
	for _, record := range records {
		response = append(response, SalesProfileResponse{FinancialProfile: record.FinancialProfile, OwnerEmail: record.OwnerEmail})
	}

	return c.JSON(http.StatusOK, map[string][]SalesProfileResponse{"profiles": response})
}

// ListDocuments возвращает документы всех клиентов.
func (h *SalesHandler) ListDocuments(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.Sales.ListDocuments(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	response := make([]SalesDocumentResponse, 0, len(records))
	for _, record := range records {
		response = append(response, SalesDocumentResponse{Document: record.Document, OwnerEmail: record.OwnerEmail})
	}

	return c.JSON(http.StatusOK, map[string][]SalesDocumentResponse{"documents": response})
}

// ListRecommendations возвращает рекомендации всех клиентов.
func (h *SalesHandler) ListRecommendations(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.Sales.ListRecommendations(c.Request().Context(), limit, offset)
	if err != nil {
		return respondError(c, err, "")
	}

	response := make([]SalesRecommendationResponse, 0, len(records))
	for _, record := range records {
		response = append(response, SalesRecommendationResponse{Recommendation: record.Recommendation, OwnerEmail: record.OwnerEmail})
	}

	return c.JSON(http.StatusOK, map[string][]SalesRecommendationResponse{"recommendations": response})
}

// Overview собирает карточку клиента: пользователь, анкета, документы и
// рекомендации загружаются параллельно.
func (h *SalesHandler) Overview(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return notFound(c, "user not found")
	}

	var (
		response   LeadOverviewResponse
		profile    models.FinancialProfile
		hasProfile bool
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		user, err := h.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		response.User = toAuthUser(user)
		return nil
	})
	g.Go(func() error {
		p, err := h.Profiles.GetByUserID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		profile, hasProfile = p, true
		return nil
	})
	g.Go(func() error {
		docs, err := h.Documents.ListByUser(ctx, userID, 200, 0)
		response.Documents = docs
		return err
	})
	g.Go(func() error {
		recs, err := h.Recommendations.ListByUser(ctx, userID, 200, 0)
		response.Recommendations = recs
		return err
	})

	if err := g.Wait(); err != nil {
		return respondError(c, err, "user not found")
	}
	if hasProfile {
		response.Profile = &profile
	}

	return c.JSON(http.StatusOK, response)
}

// Stats возвращает статистику лидов за последние дни.
func (h *SalesHandler) Stats(c echo.Context) error {
	days := defaultStatsDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid days")
		}
		if parsed > maxStatsDays {
			parsed = maxStatsDays
		}
		days = parsed
	}

	stats, err := h.Sales.Stats(c.Request().Context(), days)
	if err != nil {
		return respondError(c, err, "")
	}

	byDay := make([]SalesStatsDay, 0, len(stats.RecommendationsByDay))
	for _, day := range stats.RecommendationsByDay {
		byDay = append(byDay, SalesStatsDay{Date: day.Day.Format(dateLayout), Count: day.Count})
	}

	return c.JSON(http.StatusOK, SalesStatsResponse{
		Leads:                stats.Leads,
		SalesStaff:           stats.SalesStaff,
		Profiles:             stats.Profiles,
		Documents:            stats.Documents,
		Recommendations:      stats.Recommendations,
		Selections:           stats.Selections,
		AIRequests:           stats.AIRequests,
		AISuccess:            stats.AISuccess,
		AIFail:               stats.AIFail,
		RecommendationsByDay: byDay,
	})
}

func parsePagination(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		if parsed > maxLimit {
			parsed = maxLimit
		}
		limit = parsed
	}

	offset := 0
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}

	return limit, offset, nil
}
