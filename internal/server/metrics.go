package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the custom Prometheus metrics for the drill API
type Metrics struct {
	SessionsBuilt    *prometheus.CounterVec
	ResultsSubmitted prometheus.Counter
	AnswersGraded    *prometheus.CounterVec
	AuthBlocked      *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// sharedMetrics returns the process-wide metrics set. Registration with the
// default registry must happen exactly once.
func sharedMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			SessionsBuilt: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "drillbot_sessions_built_total",
				Help: "Practice sessions composed, by mode",
			}, []string{"mode"}),

			ResultsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "drillbot_results_submitted_total",
				Help: "Result submissions accepted",
			}),

			AnswersGraded: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "drillbot_answers_graded_total",
				Help: "Graded answers processed, by outcome",
			}, []string{"outcome"}),

			AuthBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "drillbot_auth_blocked_total",
				Help: "Auth attempts rejected by the attempt limiter, by endpoint",
			}, []string{"endpoint"}),
		}
	})
	return metrics
}
