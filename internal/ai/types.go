package ai

import (
	"time"

	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
)

// ProfileInput is the questionnaire the recommendation prompt is built from.
type ProfileInput struct {
	GrossMonthlyIncome   float64 `json:"gross_monthly_income"`
	OtherMonthlyIncome   float64 `json:"other_monthly_income"`
	FixedMonthlyExpenses float64 `json:"fixed_monthly_expenses"`
	LiquidSavings        float64 `json:"liquid_savings"`
	CreditScore          string  `json:"credit_score"`
	OwnershipHorizon     string  `json:"ownership_horizon"`
	AnnualMileage        string  `json:"annual_mileage"`
	PassengerNeeds       string  `json:"passenger_needs"`
	CommuteProfile       string  `json:"commute_profile"`
	DownPayment          float64 `json:"down_payment"`
}

type Result struct {
	Document     quote.Document
	Normalized   bool
	SchemaIssues []string
	Prompt       string
	Raw          []byte
	Latency      time.Duration
}
