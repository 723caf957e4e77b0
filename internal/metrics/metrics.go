// Package metrics declares the Prometheus collectors of the guessing engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adaptive_guess"

var (
	remainingCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "remaining_count",
		Help:      "Candidates left after each answered question",
		Buckets:   []float64{0, 1, 2, 3, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	questionsPerRound = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "round",
		Name:      "questions",
		Help:      "Questions asked per finished round",
		Buckets:   []float64{1, 3, 5, 8, 10, 12, 15, 18, 20},
	})

	roundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "round",
		Name:      "finished_total",
		Help:      "Finished rounds by outcome",
	}, []string{"outcome"})

	wrongGuessesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "round",
		Name:      "wrong_guesses_total",
		Help:      "Guesses the player rejected",
	})

	selectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "selection",
		Name:      "latency_seconds",
		Help:      "Time to score and pick the next question",
		Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	popularityUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "learning",
		Name:      "updates_total",
		Help:      "Popularity writes by kind: reward, penalty, or decay",
	}, []string{"kind"})
)

// ObserveRemaining records the remaining-set size after an answer.
func ObserveRemaining(n int) {
	remainingCount.Observe(float64(n))
}

// ObserveSelection records how long question selection took.
func ObserveSelection(d time.Duration) {
	selectionLatency.Observe(d.Seconds())
}

// RoundFinished records one finished round.
func RoundFinished(outcome string, questions int) {
	roundsTotal.WithLabelValues(outcome).Inc()
	questionsPerRound.Observe(float64(questions))
}

// WrongGuess counts one rejected guess.
func WrongGuess() {
	wrongGuessesTotal.Inc()
}

// PopularityUpdated counts n popularity writes of kind.
func PopularityUpdated(kind string, n int) {
	popularityUpdates.WithLabelValues(kind).Add(float64(n))
}
