package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AjayAlluri/Toyota-Financing/internal/finance"
	"github.com/AjayAlluri/Toyota-Financing/internal/metrics"
	"github.com/AjayAlluri/Toyota-Financing/internal/quote"
)

type FinanceEstimateRequest struct {
	Price       float64 `json:"price"`
	APRPercent  float64 `json:"apr_percent"`
	TermMonths  int     `json:"term_months"`
	DownPayment float64 `json:"down_payment"`
}

type LeaseEstimateRequest struct {
	BasePayment     float64 `json:"base_payment"`
	AnnualMileage   *int    `json:"annual_mileage"`
	LeaseTermMonths *int    `json:"lease_term_months"`
}

// FinanceEstimate считает ежемесячный платеж по кредиту.
func FinanceEstimate(c echo.Context) error {
	var req FinanceEstimateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	payment, err := finance.FinancePayment(finance.FinanceInput{
		Price:       req.Price,
		APRPercent:  req.APRPercent,
		TermMonths:  req.TermMonths,
		DownPayment: req.DownPayment,
	})
	if err != nil {
		return respondError(c, err, "")
	}
	metrics.PaymentEstimates.WithLabelValues("finance").Inc()

	return c.JSON(http.StatusOK, quote.Estimate{MonthlyPayment: payment, Formatted: finance.FormatUSD(payment)})
}

// LeaseEstimate считает лизинговый платеж. Пропущенные пробег и срок
// берутся опорными: 12000 миль в год и 36 месяцев.
func LeaseEstimate(c echo.Context) error {
	var req LeaseEstimateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	in := finance.LeaseInput{
		BasePayment:   req.BasePayment,
		AnnualMileage: finance.ReferenceAnnualMileage,
		TermMonths:    finance.ReferenceLeaseTerm,
	}
	if req.AnnualMileage != nil {
		in.AnnualMileage = *req.AnnualMileage
	}
	if req.LeaseTermMonths != nil {
		in.TermMonths = *req.LeaseTermMonths
	}

	payment, err := finance.LeasePayment(in)
	if err != nil {
		return respondError(c, err, "")
	}
	metrics.PaymentEstimates.WithLabelValues("lease").Inc()

	return c.JSON(http.StatusOK, quote.Estimate{MonthlyPayment: payment, Formatted: finance.FormatUSD(payment)})
}
