// Package metrics exposes prometheus collectors for the auth and
// recommendation paths plus a request-duration middleware.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sleepcycle_registrations_total",
		Help: "Successful user registrations.",
	})

	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sleepcycle_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"}) // success, failure, rate_limited

	RecommendationsConfirmedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sleepcycle_recommendations_confirmed_total",
		Help: "Recommendations confirmed into sleep log entries.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sleepcycle_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
