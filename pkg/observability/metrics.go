// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the tokengate service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// AuthBuckets defines histogram buckets suited for auth-path latencies,
// ranging from 1ms (token decode) to 5s (bcrypt under load).
var AuthBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokengate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: AuthBuckets,
		},
		[]string{"method"},
	)

	// LoginsTotal counts credential authentication attempts by result
	// ("ok" or "failed").
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_logins_total",
			Help: "Login attempts",
		},
		[]string{"result"},
	)

	// TokensIssuedTotal counts access tokens issued.
	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokengate_tokens_issued_total",
			Help: "Access tokens issued",
		},
	)

	// TokenValidationsTotal counts bearer token decodes by result
	// ("ok", "bad_signature", "expired", "malformed").
	TokenValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_token_validations_total",
			Help: "Token validations",
		},
		[]string{"result"},
	)

	// AuthRejectedTotal counts requests rejected by the authorization gate
	// ("unauthenticated" or "forbidden").
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokengate_auth_rejected_total",
			Help: "Gate rejections",
		},
		[]string{"reason"},
	)

	// RateLimitRejectedTotal counts login attempts rejected by the limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokengate_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginsTotal,
		TokensIssuedTotal,
		TokenValidationsTotal,
		AuthRejectedTotal,
		RateLimitRejectedTotal,
	)
}
