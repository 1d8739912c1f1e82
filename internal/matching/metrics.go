package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchingRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_runs_total",
		Help: "Total number of matching runs by direction and outcome",
	}, []string{"direction", "status"})

	matchingRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matching_run_duration_seconds",
		Help:    "Wall-clock duration of the matching computation",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"direction"})

	matchedPassengersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_matched_passengers_total",
		Help: "Passengers seated across all matching runs",
	}, []string{"direction"})

	unmatchedPassengersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_unmatched_passengers_total",
		Help: "Passengers left unseated across all matching runs, by reason",
	}, []string{"reason"})
)

func recordRun(direction TripDirection, status string, durationSeconds float64) {
	matchingRunsTotal.WithLabelValues(string(direction), status).Inc()
	if status == "completed" {
		matchingRunDuration.WithLabelValues(string(direction)).Observe(durationSeconds)
	}
}

func recordOutcome(result *MatchResult) {
	matchedPassengersTotal.WithLabelValues(string(result.TripDirection)).
		Add(float64(result.Metadata.MatchedPassengers))
	for _, u := range result.UnmatchedPassengers {
		unmatchedPassengersTotal.WithLabelValues(string(u.Reason)).Inc()
	}
}
