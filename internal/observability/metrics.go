package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bankd",
			Subsystem: "server",
			Name:      "sessions_active",
			Help:      "Connection sessions currently being served.",
		},
	)
	sessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bankd",
			Subsystem: "server",
			Name:      "sessions_total",
			Help:      "Total connection sessions accepted.",
		},
	)
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bankd",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total request frames dispatched.",
		},
		[]string{"action", "status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bankd",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Request dispatch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action", "status"},
	)
	accountsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bankd",
			Subsystem: "bank",
			Name:      "accounts_created_total",
			Help:      "Accounts created over the process lifetime.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bankd",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bankd",
			Subsystem: "admin",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			sessionsActive, sessionsTotal,
			requestsTotal, requestDuration,
			accountsCreated,
			httpRequests, httpDuration,
		)
	})
}

func SessionOpened() {
	sessionsTotal.Inc()
	sessionsActive.Inc()
}

func SessionClosed() {
	sessionsActive.Dec()
}

// RecordRequest tracks one dispatched frame. Action is the request's first
// field, status the response's ("ok" or "nok"). Unknown action codes
// collapse into one label value to keep cardinality bounded.
func RecordRequest(action, status string, duration time.Duration) {
	switch action {
	case "1", "2", "3", "4", "5", "6", "7":
	default:
		action = "other"
	}
	requestsTotal.WithLabelValues(action, status).Inc()
	requestDuration.WithLabelValues(action, status).Observe(duration.Seconds())
}

func RecordAccountCreated() {
	accountsCreated.Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, code).Inc()
	httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}
