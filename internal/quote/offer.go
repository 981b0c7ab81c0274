package quote

import (
	"encoding/json"
	"strconv"
	"strings"
)

type FinanceTerms struct {
	APRPercent              float64 `json:"apr_percent"`
	TermMonths              int     `json:"term_months"`
	EstimatedMonthlyPayment float64 `json:"estimated_monthly_payment"`
}

type LeaseTerms struct {
	TermMonths              int     `json:"term_months"`
	EstimatedMonthlyPayment float64 `json:"estimated_monthly_payment"`
	AnnualMileageLimit      int     `json:"annual_mileage_limit"`
	LeaseScore              float64 `json:"lease_score"`
}

// VehicleOffer is one recommended Toyota with its finance and lease terms.
type VehicleOffer struct {
	Year            int          `json:"year"`
	Make            string       `json:"make"`
	Model           string       `json:"model"`
	Trim            string       `json:"trim"`
	Price           float64      `json:"price"`
	Mileage         string       `json:"mileage"`
	Seats           int          `json:"seats"`
	HeadlineFeature string       `json:"headline_feature"`
	Finance         FinanceTerms `json:"finance"`
	Lease           LeaseTerms   `json:"lease"`
}

// UnmarshalJSON treats a missing or non-numeric price as 0, the same way
// Normalize ranks it.
func (o *VehicleOffer) UnmarshalJSON(data []byte) error {
	type plain VehicleOffer
	aux := struct {
		*plain
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Price = OfferPrice(data)
	return nil
}

// Summary форматирует предложение как "2025 Toyota Camry LE".
func (o VehicleOffer) Summary() string {
	parts := make([]string, 0, 4)
	if o.Year > 0 {
		parts = append(parts, strconv.Itoa(o.Year))
	}
	for _, part := range []string{o.Make, o.Model, o.Trim} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}
