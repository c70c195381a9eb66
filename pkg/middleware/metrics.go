package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	navErrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/nav"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navcore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navcore",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeDuplicate      = "duplicate"
	OutcomeFallback       = "fallback"
	OutcomeNotFound       = "not_found"
	OutcomeRedirectCycle  = "redirect_cycle"
	OutcomeViewLoadFailed = "view_load_failed"
	OutcomeSuperseded     = "superseded"
	OutcomeInvalidPath    = "invalid_path"
	OutcomeError          = "error"
)

// Metrics collects Prometheus metrics for navigations and sessions.
// It implements nav.Middleware.
type Metrics struct {
	navigations    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	redirects      prometheus.Counter
	activeSessions prometheus.Gauge
	protocolErrors *prometheus.CounterVec
}

var _ nav.Middleware = (*Metrics)(nil)

// Prometheus registers the navigation metrics and returns the collector.
// Registering twice with the same registry panics, so create one per
// registry and share it between routers.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation requests by kind and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		redirects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirect hops followed",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected navigation sessions",
			ConstLabels: config.ConstLabels,
		}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Total number of rejected client messages by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Handle implements nav.Middleware.
func (m *Metrics) Handle(ctx context.Context, req *nav.Request, next func(context.Context) error) error {
	start := time.Now()
	err := next(ctx)

	kind := req.Kind.String()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	m.navigations.WithLabelValues(kind, Outcome(req, err)).Inc()
	if err == nil && req.Redirects > 0 {
		m.redirects.Add(float64(req.Redirects))
	}
	return err
}

// Outcome returns the outcome label for a finished request. Labels come
// from error codes, never from messages, to keep cardinality fixed.
func Outcome(req *nav.Request, err error) string {
	if err == nil {
		switch {
		case req.Duplicate:
			return OutcomeDuplicate
		case req.Fallback:
			return OutcomeFallback
		default:
			return OutcomeSuccess
		}
	}
	switch navErrors.CodeOf(err) {
	case navErrors.CodeNotFound:
		return OutcomeNotFound
	case navErrors.CodeRedirectCycle:
		return OutcomeRedirectCycle
	case navErrors.CodeViewLoadFailed:
		return OutcomeViewLoadFailed
	case navErrors.CodeSuperseded:
		return OutcomeSuperseded
	case navErrors.CodeInvalidPath:
		return OutcomeInvalidPath
	default:
		return OutcomeError
	}
}

// SessionOpened records a new session.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records a session ending.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// ProtocolError records a rejected client message.
func (m *Metrics) ProtocolError(errorType string) {
	m.protocolErrors.WithLabelValues(errorType).Inc()
}
