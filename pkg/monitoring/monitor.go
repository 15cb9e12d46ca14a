package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	PurchaseCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neonclub_purchases_total",
			Help: "Purchases by item type and resulting status",
		},
		[]string{"item_type", "status"},
	)

	DuplicatePurchaseCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neonclub_duplicate_purchases_total",
			Help: "Purchases rejected by the completed-purchase unique index",
		},
		[]string{"item_type"},
	)

	LessonCompletionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neonclub_lesson_completions_total",
			Help: "Lessons marked as completed",
		},
	)

	CourseCompletionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neonclub_course_completions_total",
			Help: "Courses reaching 100% progress",
		},
	)

	CacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neonclub_catalog_cache_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	RateLimitedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "neonclub_rate_limited_requests_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			PurchaseCounter,
			DuplicatePurchaseCounter,
			LessonCompletionCounter,
			CourseCompletionCounter,
			CacheCounter,
			RateLimitedCounter,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
