package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Token endpoint Prometheus metrics. Defined in a standalone package to avoid
// import cycles between the HTTP and service packages.

var (
	TokenGrants = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "oauth_token_grants_total",
		Help: "Resultados del token endpoint por grant_type y outcome",
	}, []string{"grant_type", "result"})

	TokenIssueLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "oauth_token_issue_latency_ms",
		Help:    "Latencia del token endpoint en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "oauth_token_rate_limited_total",
		Help: "Requests rechazados por rate limiting",
	})
)

// Register registers the token metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{TokenGrants, TokenIssueLatency, RateLimited} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
