package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements curve.Observer using Prometheus.
type Recorder struct {
	runsTotal       *prometheus.CounterVec
	iterations      *prometheus.HistogramVec
	duration        *prometheus.HistogramVec
	warmStartsTotal *prometheus.CounterVec
}

// New creates a recorder registered with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvefit_bootstrap_runs_total",
				Help: "Total number of bootstrap runs",
			},
			[]string{"algorithm", "result"},
		),
		iterations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvefit_bootstrap_iterations",
				Help:    "Outer passes or windows per bootstrap run",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
			},
			[]string{"algorithm"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curvefit_bootstrap_duration_seconds",
				Help:    "Duration of bootstrap runs in seconds",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"algorithm"},
		),
		warmStartsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "curvefit_warm_starts_discarded_total",
				Help: "Total number of failed warm starts refitted from scratch",
			},
			[]string{"algorithm"},
		),
	}
}

// BootstrapFinished records one run.
func (r *Recorder) BootstrapFinished(algorithm string, iterations int, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.runsTotal.WithLabelValues(algorithm, result).Inc()
	r.iterations.WithLabelValues(algorithm).Observe(float64(iterations))
	r.duration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
}

// WarmStartDiscarded records a warm start given up on.
func (r *Recorder) WarmStartDiscarded(algorithm string) {
	r.warmStartsTotal.WithLabelValues(algorithm).Inc()
}
