package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toyota_financing_ai_requests_total",
			Help: "Total number of recommendation requests sent to the AI provider",
		},
		[]string{"provider", "outcome"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toyota_financing_ai_request_duration_seconds",
			Help:    "Duration of AI provider calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider"},
	)

	TierNormalizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toyota_financing_tier_normalizations_total",
			Help: "Tier normalization attempts by result",
		},
		[]string{"result"},
	)

	PaymentEstimates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toyota_financing_payment_estimates_total",
			Help: "Payment estimates computed by mode",
		},
		[]string{"mode"},
	)

	AccessDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toyota_financing_access_denials_total",
			Help: "Requests rejected by the access gate",
		},
		[]string{"reason"},
	)

	QuoteCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toyota_financing_quote_cache_lookups_total",
			Help: "Quote cache lookups by result",
		},
		[]string{"result"},
	)
)
