package middleware

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/outlet/pkg/navigation"
	"github.com/vango-dev/outlet/pkg/route"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "outlet").
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
		Namespace: "outlet",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for navigations.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	boundaryRenders    *prometheus.CounterVec
	supersededTotal    prometheus.Counter
	wsConnections      prometheus.Gauge
	wsErrors           *prometheus.CounterVec
}

// globalMetrics is created on the first call to Prometheus.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by kind and status",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		boundaryRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "boundary_renders_total",
			Help:        "Total number of error boundaries rendered, by boundary route",
			ConstLabels: config.ConstLabels,
		}, []string{"boundary"}),

		supersededTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_superseded_total",
			Help:        "Total number of navigations overtaken before commit",
			ConstLabels: config.ConstLabels,
		}),

		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_connections",
			Help:        "Number of open navigation websocket connections",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total websocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// navigations.
//
// Metrics collected:
//   - outlet_navigations_total: navigations by kind and status code
//     ("superseded" or "error" when nothing committed)
//   - outlet_navigation_duration_seconds: navigation duration by kind
//   - outlet_boundary_renders_total: rendered error boundaries by route id
//   - outlet_navigations_superseded_total
//   - outlet_websocket_connections, outlet_websocket_errors_total (recorded
//     by the server)
//
// Example:
//
//	nav := navigation.New(runner,
//	    navigation.WithMiddleware(middleware.Prometheus(
//	        middleware.WithNamespace("myapp"),
//	    )),
//	)
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) navigation.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return navigation.MiddlewareFunc(func(ev *navigation.Event, next func() error) error {
		kind := ev.Kind.String()
		start := time.Now()

		err := next()

		m.navigationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

		switch {
		case errors.Is(err, navigation.ErrSuperseded):
			m.supersededTotal.Inc()
			m.navigationsTotal.WithLabelValues(kind, "superseded").Inc()
		case err != nil || ev.Plan == nil:
			m.navigationsTotal.WithLabelValues(kind, "error").Inc()
		default:
			m.navigationsTotal.WithLabelValues(kind, strconv.Itoa(ev.Plan.Status)).Inc()
			if id := ev.Plan.BoundaryID(); id != "" {
				m.boundaryRenders.WithLabelValues(boundaryLabel(id)).Inc()
			}
		}
		return err
	})
}

func boundaryLabel(id string) string {
	if id == route.RootID {
		return "root"
	}
	return id
}

// RecordWebSocketOpen records a new websocket connection.
func RecordWebSocketOpen() {
	if m := current(); m != nil {
		m.wsConnections.Inc()
	}
}

// RecordWebSocketClose records a closed websocket connection.
func RecordWebSocketClose() {
	if m := current(); m != nil {
		m.wsConnections.Dec()
	}
}

// RecordWebSocketError records a websocket error by type.
func RecordWebSocketError(errorType string) {
	if m := current(); m != nil {
		m.wsErrors.WithLabelValues(errorType).Inc()
	}
}

func current() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}
