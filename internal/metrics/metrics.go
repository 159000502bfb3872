// Package metrics holds the Prometheus collectors for the ARG server.
// Collectors live in a private registry so the /metrics output only carries
// this service's series plus the standard Go and process collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	gamesStarted = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arg_games_started_total",
			Help: "Stories generated and installed, by difficulty.",
		},
		[]string{"difficulty"},
	)
	generationFailures = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arg_generation_failures_total",
			Help: "Failed story generations, partitioned by reason.",
		},
		[]string{"reason"},
	)
	generationDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arg_generation_duration_seconds",
			Help:    "Time spent waiting for the story generator.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		},
	)
	puzzleCountMismatch = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "arg_puzzle_count_mismatch_total",
			Help: "Generated stories whose puzzle count differed from the request.",
		},
	)
	answers = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "arg_answers_total",
			Help: "Answer submissions, partitioned by result status.",
		},
		[]string{"status"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func GameStarted(difficulty string) { gamesStarted.WithLabelValues(difficulty).Inc() }

func GenerationFailed(reason string) { generationFailures.WithLabelValues(reason).Inc() }

func ObserveGeneration(d time.Duration) { generationDuration.Observe(d.Seconds()) }

func PuzzleCountMismatch() { puzzleCountMismatch.Inc() }

func Answer(status string) { answers.WithLabelValues(status).Inc() }
