package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tictacevo/internal/model"
)

const (
	namespace = "tictacevo"
	subsystem = "training"
)

// TrainingMetrics exposes training progress as prometheus gauges. Each
// instance owns its registry, so concurrent runs in one process do not
// collide on metric registration.
type TrainingMetrics struct {
	registry *prometheus.Registry

	generation  prometheus.Gauge
	bestFitness prometheus.Gauge
	meanFitness prometheus.Gauge
	bestKnown   prometheus.Gauge
	gamesPlayed prometheus.Counter
}

func NewTrainingMetrics() *TrainingMetrics {
	m := &TrainingMetrics{
		registry: prometheus.NewRegistry(),
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation",
			Help:      "Index of the last completed generation.",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "best_fitness",
			Help:      "Best fitness within the last completed generation.",
		}),
		meanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "mean_fitness",
			Help:      "Mean fitness of the last completed generation.",
		}),
		bestKnown: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "best_known_fitness",
			Help:      "Best fitness seen across the whole run.",
		}),
		gamesPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "games_played_total",
			Help:      "Simulated games played during fitness evaluation.",
		}),
	}
	m.registry.MustRegister(m.generation, m.bestFitness, m.meanFitness, m.bestKnown, m.gamesPlayed)
	return m
}

// ObserveGeneration records one completed generation. games is the number of
// simulated games the generation's evaluation phase played.
func (m *TrainingMetrics) ObserveGeneration(record model.GenerationRecord, games int) {
	m.generation.Set(float64(record.Generation))
	m.bestFitness.Set(record.BestFitness)
	m.meanFitness.Set(record.MeanFitness)
	m.bestKnown.Set(record.BestKnownFitness)
	m.gamesPlayed.Add(float64(games))
}

// Handler serves the metrics in prometheus exposition format.
func (m *TrainingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
