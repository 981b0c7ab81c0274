package finance

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
)

const (
	ReferenceAnnualMileage = 12000
	ReferenceLeaseTerm     = 36

	mileageStep          = 2500.0
	mileageStepSurcharge = 0.03
	termStepMonths       = 6.0
	shortTermStepRate    = 0.015
	longTermStepRate     = 0.01
)

// Upper bounds on accepted input.
const (
	MaxPrice            = 10_000_000
	MaxAPRPercent       = 100
	MaxTermMonths       = 120
	MaxLeaseBasePayment = 100_000
	MaxAnnualMileage    = 100_000

	maxPayment = 1e12
)

var ErrInvalidInput = errors.New("invalid input")

type FinanceInput struct {
	Price       float64
	APRPercent  float64
	TermMonths  int
	DownPayment float64
}

type LeaseInput struct {
	BasePayment   float64
	AnnualMileage int
	TermMonths    int
}

// FinancePayment считает ежемесячный платеж по кредиту с фиксированной ставкой.
func FinancePayment(in FinanceInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	loan := math.Max(in.Price-in.DownPayment, 0)
	if loan == 0 {
		return 0, nil
	}

	n := float64(in.TermMonths)
	monthlyRate := in.APRPercent / 100 / 12
	if monthlyRate == 0 {
		return roundPayment(loan / n)
	}

	growth := math.Pow(1+monthlyRate, n)
	return roundPayment(loan * monthlyRate * growth / (growth - 1))
}

// LeasePayment корректирует базовый лизинговый платеж по пробегу и сроку.
func LeasePayment(in LeaseInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	if in.BasePayment == 0 {
		return 0, nil
	}

	return roundPayment(in.BasePayment * mileageMultiplier(in.AnnualMileage) * termMultiplier(in.TermMonths))
}

func roundPayment(payment float64) (int64, error) {
	if math.IsNaN(payment) || math.IsInf(payment, 0) || payment < 0 || payment > maxPayment {
		return 0, eris.Wrap(ErrInvalidInput, "payment is out of range")
	}
	return int64(math.Round(payment)), nil
}

func mileageMultiplier(annualMileage int) float64 {
	excess := math.Max(0, float64(annualMileage-ReferenceAnnualMileage))
	return 1 + excess/mileageStep*mileageStepSurcharge
}

// Shorter terms come out negative here, so the step rate only sets the magnitude.
func termMultiplier(termMonths int) float64 {
	rate := longTermStepRate
	if termMonths < ReferenceLeaseTerm {
		rate = shortTermStepRate
	}
	return 1 + float64(termMonths-ReferenceLeaseTerm)/termStepMonths*rate
}

func (in FinanceInput) validate() error {
	switch {
	case !inRange(in.Price, MaxPrice):
		return eris.Wrapf(ErrInvalidInput, "price must be between 0 and %d", MaxPrice)
	case !inRange(in.APRPercent, MaxAPRPercent):
		return eris.Wrapf(ErrInvalidInput, "apr_percent must be between 0 and %d", MaxAPRPercent)
	case in.TermMonths <= 0 || in.TermMonths > MaxTermMonths:
		return eris.Wrapf(ErrInvalidInput, "term_months must be between 1 and %d", MaxTermMonths)
	case !isFiniteNonNegative(in.DownPayment):
		return eris.Wrap(ErrInvalidInput, "down_payment must be a non-negative number")
	}
	return nil
}

func (in LeaseInput) validate() error {
	switch {
	case !inRange(in.BasePayment, MaxLeaseBasePayment):
		return eris.Wrapf(ErrInvalidInput, "base_payment must be between 0 and %d", MaxLeaseBasePayment)
	case in.AnnualMileage < 0 || in.AnnualMileage > MaxAnnualMileage:
		return eris.Wrapf(ErrInvalidInput, "annual_mileage must be between 0 and %d", MaxAnnualMileage)
	case in.TermMonths <= 0 || in.TermMonths > MaxTermMonths:
		return eris.Wrapf(ErrInvalidInput, "lease_term_months must be between 1 and %d", MaxTermMonths)
	}
	return nil
}

func isFiniteNonNegative(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}

func inRange(value, limit float64) bool {
	return isFiniteNonNegative(value) && value <= limit
}
