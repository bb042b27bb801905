package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcome labels.
const (
	OutcomeGraded   = "graded"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	registerOnce           sync.Once
	attemptsStartedTotal   prometheus.Counter
	submissionsTotal       *prometheus.CounterVec
	gradingSeconds         prometheus.Histogram
	summaryFailuresTotal   prometheus.Counter
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestSeconds     *prometheus.HistogramVec
	eventSubscribersActive prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		attemptsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_attempts_started_total",
			Help: "Total number of attempts created.",
		})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_attempt_submissions_total",
			Help: "Attempt submissions by outcome.",
		}, []string{"outcome", "code"})

		gradingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_grading_duration_seconds",
			Help:    "Latency of the grading call including store I/O.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		summaryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_summary_write_failures_total",
			Help: "Attempt summary writes that failed after the attempt was finalized.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpRequestSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		eventSubscribersActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_event_subscribers_active",
			Help: "Open websocket event streams.",
		})

		prometheus.MustRegister(
			attemptsStartedTotal,
			submissionsTotal,
			gradingSeconds,
			summaryFailuresTotal,
			httpRequestsTotal,
			httpRequestSeconds,
			eventSubscribersActive,
		)
	})
}

func AttemptsStarted() prometheus.Counter {
	RegisterMetrics()
	return attemptsStartedTotal
}

func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

func GradingLatency() prometheus.Histogram {
	RegisterMetrics()
	return gradingSeconds
}

func SummaryFailures() prometheus.Counter {
	RegisterMetrics()
	return summaryFailuresTotal
}

func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpRequestSeconds
}

func EventSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return eventSubscribersActive
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
