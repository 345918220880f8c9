// Package metrics exposes Prometheus collectors of the bot and the ops HTTP router.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarbot_events_total",
			Help: "Inbound events handled by the session engine",
		},
		[]string{"kind"},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarbot_actions_total",
			Help: "Actions executed by the dispatcher",
		},
		[]string{"kind", "result"},
	)

	leadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarbot_leads_total",
			Help: "Completed lead intake flows",
		},
	)

	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarbot_calculations_total",
			Help: "Successful calculator runs",
		},
		[]string{"type"},
	)

	fallbackDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solarbot_fallback_seconds",
			Help:    "Latency of generative fallback replies",
			Buckets: prometheus.DefBuckets,
		},
	)

	floodDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarbot_flood_dropped_total",
			Help: "Messages dropped by the anti-flood window",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarbot_http_requests_total",
			Help: "Requests served by the ops HTTP server",
		},
		[]string{"method", "path", "status"},
	)
)

func RecordEvent(kind string) {
	eventsTotal.WithLabelValues(kind).Inc()
}

// RecordAction counts an executed action; result is "ok", "error" or "skipped".
func RecordAction(kind, result string) {
	actionsTotal.WithLabelValues(kind, result).Inc()
}

func RecordLead() {
	leadsTotal.Inc()
}

func RecordCalculation(typ string) {
	calculationsTotal.WithLabelValues(typ).Inc()
}

func ObserveFallback(d time.Duration) {
	fallbackDuration.Observe(d.Seconds())
}

func RecordFloodDrop() {
	floodDropped.Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by method, path and status.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
	})
}

// NewRouter serves /healthz and /metrics. healthy is polled on every health check.
func NewRouter(healthy func() bool) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(Middleware)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if healthy != nil && !healthy() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return router
}
