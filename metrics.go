package analogy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification results as reported in the result label.
const (
	resultOK        = "ok"
	resultNoAnalogy = "no_analogy"
	resultError     = "error"
)

// Metrics records classifier activity on a Prometheus registerer.
// A nil *Metrics records nothing.
type Metrics struct {
	classifications *prometheus.CounterVec
	failures        *prometheus.CounterVec
	duration        prometheus.Histogram
	subcontexts     prometheus.Histogram
	supracontexts   prometheus.Histogram
}

// NewMetrics creates the classifier collectors and registers them on reg.
// A nil reg leaves them unregistered. Registering twice on the same
// registerer panics, as with promauto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analogy_classifications_total",
			Help: "Total classifications by result",
		}, []string{"result"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "analogy_stage_failures_total",
			Help: "Total failed classifications by the stage that failed",
		}, []string{"stage"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analogy_classification_duration_seconds",
			Help:    "Classification duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),

		subcontexts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analogy_subcontexts",
			Help:    "Number of subcontexts per classification",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		}),

		supracontexts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "analogy_supracontexts",
			Help:    "Number of homogeneous supracontexts per classification",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
		}),
	}
}

func (m *Metrics) observeDuration(start time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeLattice(subcontexts, supracontexts int) {
	if m == nil {
		return
	}
	m.subcontexts.Observe(float64(subcontexts))
	m.supracontexts.Observe(float64(supracontexts))
}

func (m *Metrics) recordResult(result string, failed Stage) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(result).Inc()
	if result == resultError {
		m.failures.WithLabelValues(string(failed)).Inc()
	}
}
