package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for a weaveconfig run across its
// five-stage pipeline: discover, parse, graph, resolve, emit.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	// Stage metrics
	stageDuration *prometheus.HistogramVec

	// Discovery metrics
	spacesDiscovered prometheus.Gauge

	// Resolution metrics
	conflictsRaised *prometheus.CounterVec
	cyclesDetected  prometheus.Counter

	// Emission metrics
	filesEmitted *prometheus.CounterVec

	// Error metrics
	errorsByKind *prometheus.CounterVec
	errorsByCode *prometheus.CounterVec

	// Watch mode metrics
	watchReruns prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Total number of weaveconfig runs started",
			},
			[]string{"command"},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of weaveconfig runs completed",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of a full weaveconfig run in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of one pipeline stage in seconds",
				Buckets:   buckets,
			},
			[]string{"stage"},
		),

		spacesDiscovered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "spaces_discovered",
				Help:      "Number of spaces found in the most recent discovery pass",
			},
		),

		conflictsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflicts_raised_total",
				Help:      "Total number of variable conflicts raised during resolution",
			},
			[]string{"kind"},
		),
		cyclesDetected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dependency_cycles_detected_total",
				Help:      "Total number of dependency cycles detected while building the space graph",
			},
		),

		filesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_emitted_total",
				Help:      "Total number of generated files written",
			},
			[]string{"kind"},
		),

		errorsByKind: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_kind_total",
				Help:      "Total number of errors by pipeline stage kind",
			},
			[]string{"kind"},
		),
		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_code_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"code"},
		),

		watchReruns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watch_reruns_total",
				Help:      "Total number of pipeline re-runs triggered by the watch mode",
			},
		),
	}

	registry.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runDuration,
		m.stageDuration,
		m.spacesDiscovered,
		m.conflictsRaised,
		m.cyclesDetected,
		m.filesEmitted,
		m.errorsByKind,
		m.errorsByCode,
		m.watchReruns,
	)

	return m, nil
}

// RecordRunStarted increments the counter for started runs.
func (m *Metrics) RecordRunStarted(command string) {
	if m.runsStarted == nil {
		return
	}
	m.runsStarted.WithLabelValues(command).Inc()
}

// RecordRunCompleted records a completed run with its status and duration.
func (m *Metrics) RecordRunCompleted(status string, duration time.Duration) {
	if m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordStageDuration records the time spent in one pipeline stage.
func (m *Metrics) RecordStageDuration(stage string, duration time.Duration) {
	if m.stageDuration == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetSpacesDiscovered records how many spaces the discovery stage found.
func (m *Metrics) SetSpacesDiscovered(count int) {
	if m.spacesDiscovered == nil {
		return
	}
	m.spacesDiscovered.Set(float64(count))
}

// RecordConflict records a variable conflict raised during resolution,
// keyed by wcerror.Code (e.g. "SHARED_VARIABLE_CONFLICT", "PER_ENV_CONFLICT").
func (m *Metrics) RecordConflict(kind string) {
	if m.conflictsRaised == nil {
		return
	}
	m.conflictsRaised.WithLabelValues(kind).Inc()
}

// RecordCycleDetected records a dependency cycle found while building the
// space graph.
func (m *Metrics) RecordCycleDetected() {
	if m.cyclesDetected == nil {
		return
	}
	m.cyclesDetected.Inc()
}

// RecordFileEmitted records one generated file write, keyed by kind
// ("config", "binding", "copy").
func (m *Metrics) RecordFileEmitted(kind string) {
	if m.filesEmitted == nil {
		return
	}
	m.filesEmitted.WithLabelValues(kind).Inc()
}

// RecordError records an error by its wcerror.Kind and, if known, Code.
func (m *Metrics) RecordError(kind, code string) {
	if m.errorsByKind == nil {
		return
	}
	m.errorsByKind.WithLabelValues(kind).Inc()
	if code != "" && m.errorsByCode != nil {
		m.errorsByCode.WithLabelValues(code).Inc()
	}
}

// RecordWatchRerun records one pipeline re-run triggered by `weaveconfig dev`.
func (m *Metrics) RecordWatchRerun() {
	if m.watchReruns == nil {
		return
	}
	m.watchReruns.Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
