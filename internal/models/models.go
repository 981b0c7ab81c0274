package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AjayAlluri/Toyota-Financing/internal/access"
)

type PlanType string

const (
	PlanTypeFinance PlanType = "finance"
	PlanTypeLease   PlanType = "lease"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FirstName    *string     `json:"first_name,omitempty"`
	LastName     *string     `json:"last_name,omitempty"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// DisplayName собирает имя пользователя для интерфейса.
func (u User) DisplayName() string {
	parts := make([]string, 0, 2)
	for _, part := range []*string{u.FirstName, u.LastName} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// Principal возвращает принципала для проверки доступа.
func (u User) Principal() access.Principal {
	return access.Principal{
		ID:          u.ID,
		Role:        u.Role,
		Email:       u.Email,
		DisplayName: u.DisplayName(),
	}
}

type FinancialProfile struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	GrossMonthlyIncome   float64   `json:"gross_monthly_income"`
	OtherMonthlyIncome   float64   `json:"other_monthly_income"`
	FixedMonthlyExpenses float64   `json:"fixed_monthly_expenses"`
	LiquidSavings        float64   `json:"liquid_savings"`
	CreditScore          string    `json:"credit_score"`
	OwnershipHorizon     string    `json:"ownership_horizon"`
	AnnualMileage        string    `json:"annual_mileage"`
	PassengerNeeds       string    `json:"passenger_needs"`
	CommuteProfile       string    `json:"commute_profile"`
	DownPayment          float64   `json:"down_payment"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Document struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	OriginalName string    `json:"original_name"`
	StorageKey   string    `json:"-"`
	FileSize     int64     `json:"file_size"`
	MIMEType     string    `json:"mime_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type Recommendation struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	BudgetCar    string          `json:"budget_car"`
	BalancedCar  string          `json:"balanced_car"`
	PremiumCar   string          `json:"premium_car"`
	Normalized   bool            `json:"normalized"`
	Data         json.RawMessage `json:"recommendation_data"`
	SelectedTier *string         `json:"selected_tier,omitempty"`
	SelectedPlan *PlanType       `json:"selected_plan,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
