package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	generationAttempts    *prometheus.CounterVec
	generationExhaustions *prometheus.CounterVec
	topicRejectionsTotal  prometheus.Counter
	essayScoresHistogram  *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essay_http_requests_total",
			Help: "Total number of assessment API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "essay_http_latency_seconds",
			Help:    "Latency distribution for assessment API requests.",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essay_http_errors_total",
			Help: "Total number of error responses returned by assessment endpoints.",
		}, []string{"method", "route", "status"})

		generationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Generation attempts per orchestration step and result.",
		}, []string{"step", "result"})

		generationExhaustions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "exhaustions_total",
			Help:      "Orchestration steps that ran out of attempts.",
		}, []string{"step"})

		topicRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "topic_rejections_total",
			Help:      "Topics rejected because the generated prompt did not mention them.",
		})

		essayScoresHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "score_ratio",
			Help:      "Accepted essay totals as a fraction of the rubric maximum.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"grade"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			generationAttempts, generationExhaustions, topicRejectionsTotal, essayScoresHistogram,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// GenerationAttempts counts attempts by step and result.
func GenerationAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return generationAttempts
}

// GenerationExhaustions counts steps that ran out of attempts.
func GenerationExhaustions() *prometheus.CounterVec {
	RegisterMetrics()
	return generationExhaustions
}

// TopicRejections counts topics refused by the prompt relevance guard.
func TopicRejections() prometheus.Counter {
	RegisterMetrics()
	return topicRejectionsTotal
}

// EssayScores records accepted totals relative to the maximum.
func EssayScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return essayScoresHistogram
}
