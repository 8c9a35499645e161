package middleware

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	authRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized requests",
		},
		[]string{"reason"},
	)

	checkInsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_checkins_total",
			Help: "Completed daily check-ins",
		},
	)
	sessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "study_sessions_started_total",
			Help: "Study sessions opened",
		},
	)
	sessionsStopped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "study_sessions_stopped_total",
			Help: "Study sessions closed",
		},
	)
	remoteSyncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remote_sync_failures_total",
			Help: "Remote store writes that failed and were degraded to local-only",
		},
	)
)

// InitPrometheus registers the metrics. Call this from main.go
func InitPrometheus() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(authRejections)
	prometheus.MustRegister(checkInsTotal)
	prometheus.MustRegister(sessionsStarted)
	prometheus.MustRegister(sessionsStopped)
	prometheus.MustRegister(remoteSyncFailures)
}

// CountCheckIn records a completed check-in.
func CountCheckIn() { checkInsTotal.Inc() }

// CountSessionStart records an opened study session.
func CountSessionStart() { sessionsStarted.Inc() }

// CountSessionStop records a closed study session.
func CountSessionStop() { sessionsStopped.Inc() }

// CountRemoteSyncFailure records a swallowed remote-store write failure.
func CountRemoteSyncFailure() { remoteSyncFailures.Inc() }

// MonitorMiddleware wraps the router to track all request stats
func MonitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Initialize with 200 OK in case WriteHeader isn't called explicitly
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, http.StatusText(ww.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration)

		if ww.statusCode == http.StatusUnauthorized {
			authRejections.WithLabelValues("401_unauthorized").Inc()
		} else if ww.statusCode == http.StatusForbidden {
			authRejections.WithLabelValues("403_forbidden").Inc()
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
