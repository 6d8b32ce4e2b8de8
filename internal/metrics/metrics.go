package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/soaringjerry/Raay/internal/builder"
)

const namespace = "raay"

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Builder metrics
	BuilderOperationsTotal *prometheus.CounterVec
	ValidationRejections   *prometheus.CounterVec
	ActiveSessions         prometheus.Gauge
	SessionsEvictedTotal   prometheus.Counter
	DraftErrorsTotal       *prometheus.CounterVec

	// Persistence metrics
	SurveySavesTotal   *prometheus.CounterVec
	SurveySaveDuration prometheus.Histogram

	logger *zap.Logger
}

var _ builder.Observer = (*Metrics)(nil)

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		BuilderOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "operations_total",
				Help:      "Builder session operations by outcome (applied, ignored, rejected, error)",
			},
			[]string{"op", "outcome"},
		),
		ValidationRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "validation_rejections_total",
				Help:      "Edits and saves rejected by validation, by code",
			},
			[]string{"code"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "active_sessions",
				Help:      "Builder sessions held in memory",
			},
		),
		SessionsEvictedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "sessions_evicted_total",
				Help:      "Idle builder sessions dropped from memory",
			},
		),
		DraftErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "builder",
				Name:      "draft_errors_total",
				Help:      "Failed draft store calls",
			},
			[]string{"operation"},
		),
		SurveySavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "survey_saves_total",
				Help:      "Survey save attempts by result",
			},
			[]string{"result"},
		),
		SurveySaveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "survey_save_duration_seconds",
				Help:      "Survey save duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		logger: logger,
	}
}

// ObserveOperation implements builder.Observer.
func (m *Metrics) ObserveOperation(op, outcome string) {
	m.safeExecute("ObserveOperation", func() {
		m.BuilderOperationsTotal.WithLabelValues(op, outcome).Inc()
	})
}

func (m *Metrics) RecordValidationRejection(code string) {
	m.safeExecute("RecordValidationRejection", func() {
		m.ValidationRejections.WithLabelValues(code).Inc()
	})
}

func (m *Metrics) SetActiveSessions(n int) {
	m.safeExecute("SetActiveSessions", func() {
		m.ActiveSessions.Set(float64(n))
	})
}

func (m *Metrics) RecordEvictions(n int) {
	m.safeExecute("RecordEvictions", func() {
		m.SessionsEvictedTotal.Add(float64(n))
	})
}

func (m *Metrics) RecordDraftError(operation string) {
	m.safeExecute("RecordDraftError", func() {
		m.DraftErrorsTotal.WithLabelValues(operation).Inc()
	})
}

// RecordSave records one save attempt; result is "created", "updated", "rejected" or "error".
func (m *Metrics) RecordSave(result string, duration time.Duration) {
	m.safeExecute("RecordSave", func() {
		m.SurveySavesTotal.WithLabelValues(result).Inc()
		m.SurveySaveDuration.Observe(duration.Seconds())
	})
}

// safeExecute keeps a metrics failure from taking a request down.
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
