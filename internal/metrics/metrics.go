// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthzDecisionsTotal counts coarse policy decisions by authority level, resource, action and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"level", "resource", "action", "decision"},
	)

	// SignupsTotal counts signup requests by outcome.
	SignupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_signups_total",
			Help: "Signup requests by outcome (created, resent, rejected, failed)",
		},
		[]string{"outcome"},
	)

	// TokenExchangesTotal counts confirmation code redemptions by outcome.
	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_token_exchanges_total",
			Help: "Confirmation code redemptions by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func RecordAuthzDecision(level, resource, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(level, resource, action, decision).Inc()
}

func RecordSignup(outcome string) {
	SignupsTotal.WithLabelValues(outcome).Inc()
}

func RecordTokenExchange(outcome string) {
	TokenExchangesTotal.WithLabelValues(outcome).Inc()
}

// Middleware observes request latency. Unmatched routes are grouped under "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
