package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
	"github.com/AjayAlluri/Toyota-Financing/internal/ai"
	"github.com/AjayAlluri/Toyota-Financing/internal/models"
	"github.com/AjayAlluri/Toyota-Financing/internal/repository"
)

type ProfileHandler struct {
	Profiles *repository.ProfileRepository
}

// NewProfileHandler создает обработчик финансовой анкеты.
func NewProfileHandler(profiles *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

// ProfileRequest is the financial questionnaire filled in before a quote.
type ProfileRequest struct {
	GrossMonthlyIncome   float64 `json:"gross_monthly_income" validate:"gte=0"`
	OtherMonthlyIncome   float64 `json:"other_monthly_income" validate:"gte=0"`
	FixedMonthlyExpenses float64 `json:"fixed_monthly_expenses" validate:"gte=0"`
	LiquidSavings        float64 `json:"liquid_savings" validate:"gte=0"`
	CreditScore          string  `json:"credit_score" validate:"required,max=50"`
	OwnershipHorizon     string  `json:"ownership_horizon" validate:"max=50"`
	AnnualMileage        string  `json:"annual_mileage" validate:"max=50"`
	PassengerNeeds       string  `json:"passenger_needs" validate:"max=50"`
	CommuteProfile       string  `json:"commute_profile" validate:"max=50"`
	DownPayment          float64 `json:"down_payment" validate:"gte=0"`
}

func (r ProfileRequest) toModel(owner access.Principal) models.FinancialProfile {
	return models.FinancialProfile{
		UserID:               owner.ID,
		GrossMonthlyIncome:   r.GrossMonthlyIncome,
		OtherMonthlyIncome:   r.OtherMonthlyIncome,
		FixedMonthlyExpenses: r.FixedMonthlyExpenses,
		LiquidSavings:        r.LiquidSavings,
		CreditScore:          strings.TrimSpace(r.CreditScore),
		OwnershipHorizon:     strings.TrimSpace(r.OwnershipHorizon),
		AnnualMileage:        strings.TrimSpace(r.AnnualMileage),
		PassengerNeeds:       strings.TrimSpace(r.PassengerNeeds),
		CommuteProfile:       strings.TrimSpace(r.CommuteProfile),
		DownPayment:          r.DownPayment,
	}
}

func profileInput(p models.FinancialProfile) ai.ProfileInput {
	return ai.ProfileInput{
		GrossMonthlyIncome:   p.GrossMonthlyIncome,
		OtherMonthlyIncome:   p.OtherMonthlyIncome,
		FixedMonthlyExpenses: p.FixedMonthlyExpenses,
		LiquidSavings:        p.LiquidSavings,
		CreditScore:          p.CreditScore,
		OwnershipHorizon:     p.OwnershipHorizon,
		AnnualMileage:        p.AnnualMileage,
		PassengerNeeds:       p.PassengerNeeds,
		CommuteProfile:       p.CommuteProfile,
		DownPayment:          p.DownPayment,
	}
}

// Get возвращает анкету текущего пользователя.
func (h *ProfileHandler) Get(c echo.Context) error {
	principal, ok := access.PrincipalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.Profiles.GetByUserID(c.Request().Context(), principal.ID)
	if err != nil {
		return respondError(c, err, "profile not found")
	}

	return c.JSON(http.StatusOK, profile)
}

// Put сохраняет анкету текущего пользователя.
func (h *ProfileHandler) Put(c echo.Context) error {
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

	profile, err := h.Profiles.Upsert(c.Request().Context(), req.toModel(*principal))
	if err != nil {
		return respondError(c, err, "")
	}

	return c.JSON(http.StatusOK, profile)
}
