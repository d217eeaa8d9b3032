package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResourceOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mentorhub", Name: "resource_operations_total", Help: "Resource API operations by resource, operation and outcome."},
		[]string{"resource", "operation", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mentorhub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mentorhub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ResourceOperations)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
