package access

import "github.com/AjayAlluri/Toyota-Financing/internal/metrics"

func recordDenial(reason string) {
	metrics.AccessDenials.WithLabelValues(reason).Inc()
}
