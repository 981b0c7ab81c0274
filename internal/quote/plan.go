package quote

import (
	"github.com/AjayAlluri/Toyota-Financing/internal/finance"
)

const (
	DefaultFinanceTermMonths = 60
	DefaultLeaseTermMonths   = finance.ReferenceLeaseTerm
	DefaultAnnualMileage     = finance.ReferenceAnnualMileage
)

type Estimate struct {
	MonthlyPayment int64  `json:"monthly_payment"`
	Formatted      string `json:"formatted"`
}

// Sliders overrides an offer's own terms. Nil fields keep the offer value for
// finance and the reference mileage and term for lease, since the quoted lease
// payment is taken as the reference payment.
type Sliders struct {
	DownPayment     *float64
	TermMonths      *int
	AnnualMileage   *int
	LeaseTermMonths *int
}

type Plan struct {
	Tier            Tier         `json:"tier"`
	Summary         string       `json:"summary"`
	Offer           VehicleOffer `json:"offer"`
	FinanceEstimate Estimate     `json:"finance_estimate"`
	LeaseEstimate   Estimate     `json:"lease_estimate"`
}

// Plans строит планы по всем трем уровням с одинаковым первоначальным взносом.
func Plans(tiers TieredRecommendation, downPayment float64) ([]Plan, error) {
	plans := make([]Plan, 0, 3)
	for _, tier := range AllTiers() {
		offer, err := tiers.Offer(tier)
		if err != nil {
			return nil, err
		}

		financeEstimate, leaseEstimate, err := EstimateOffer(offer, Sliders{DownPayment: &downPayment})
		if err != nil {
			return nil, err
		}

		plans = append(plans, Plan{
			Tier:            tier,
			Summary:         offer.Summary(),
			Offer:           offer,
			FinanceEstimate: financeEstimate,
			LeaseEstimate:   leaseEstimate,
		})
	}
	return plans, nil
}

// EstimateOffer пересчитывает платежи по кредиту и лизингу для предложения.
func EstimateOffer(offer VehicleOffer, sliders Sliders) (Estimate, Estimate, error) {
	financeIn := finance.FinanceInput{
		Price:      offer.Price,
		APRPercent: offer.Finance.APRPercent,
		TermMonths: firstPositive(offer.Finance.TermMonths, DefaultFinanceTermMonths),
	}
	if sliders.DownPayment != nil {
		financeIn.DownPayment = *sliders.DownPayment
	}
	if sliders.TermMonths != nil {
		financeIn.TermMonths = *sliders.TermMonths
	}

	leaseIn := finance.LeaseInput{
		BasePayment:   offer.Lease.EstimatedMonthlyPayment,
		AnnualMileage: DefaultAnnualMileage,
		TermMonths:    DefaultLeaseTermMonths,
	}
	if sliders.AnnualMileage != nil {
		leaseIn.AnnualMileage = *sliders.AnnualMileage
	}
	if sliders.LeaseTermMonths != nil {
		leaseIn.TermMonths = *sliders.LeaseTermMonths
	}

	financePayment, err := finance.FinancePayment(financeIn)
	if err != nil {
		return Estimate{}, Estimate{}, err
	}
	leasePayment, err := finance.LeasePayment(leaseIn)
	if err != nil {
		return Estimate{}, Estimate{}, err
	}

	return newEstimate(financePayment), newEstimate(leasePayment), nil
}

func newEstimate(payment int64) Estimate {
	return Estimate{MonthlyPayment: payment, Formatted: finance.FormatUSD(payment)}
}

func firstPositive(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
