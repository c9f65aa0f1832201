package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one correction run.
type Metrics struct {
	Registry *prometheus.Registry

	CorrectionsApplied prometheus.Counter
	StageErrors        *prometheus.CounterVec   // labels: stage={extract,lookup,transform,load,publish}
	SamplesRotated     prometheus.Counter
	RotationAngle      prometheus.Gauge
	StageDuration      *prometheus.HistogramVec // labels: stage
	LastSuccess        prometheus.Gauge
	ReportsPublished   prometheus.Counter
}

// NewMetrics creates the run metrics on a private registry so repeated
// construction in tests never collides.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		CorrectionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orient_correct",
			Name:      "corrections_applied_total",
			Help:      "Component pairs rotated and written.",
		}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orient_correct",
			Name:      "stage_errors_total",
			Help:      "Failures by pipeline stage.",
		}, []string{"stage"}),
		SamplesRotated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orient_correct",
			Name:      "samples_rotated_total",
			Help:      "Sample pairs rotated.",
		}),
		RotationAngle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orient_correct",
			Name:      "rotation_angle_degrees",
			Help:      "Azimuth deviation applied by the last correction.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orient_correct",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orient_correct",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful correction.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orient_correct",
			Name:      "reports_published_total",
			Help:      "Correction reports published to Kafka.",
		}),
	}

	m.Registry.MustRegister(
		m.CorrectionsApplied,
		m.StageErrors,
		m.SamplesRotated,
		m.RotationAngle,
		m.StageDuration,
		m.LastSuccess,
		m.ReportsPublished,
	)
	return m
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
