// Package metrics provides Prometheus metrics for the lolhub rating service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Rating pipeline
	gamesProcessed prometheus.Counter
	gamesSkipped   prometheus.Counter
	teamsRated     prometheus.Gauge
	leagues        prometheus.Gauge
	projections    prometheus.Counter

	// Snapshot reloads
	reloads            *prometheus.CounterVec
	reloadDuration     prometheus.Histogram
	snapshotLastUnix   prometheus.Gauge
	snapshotLastGameTS prometheus.Gauge

	// Upstream feeds and cache
	upstreamErrors  *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lolhub",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesProcessed = auto.NewCounter(m.counterOpts("games_processed_total",
		"Total number of well-formed games applied to ratings"))
	m.gamesSkipped = auto.NewCounter(m.counterOpts("games_skipped_total",
		"Total number of malformed games skipped during rating"))
	m.teamsRated = auto.NewGauge(m.gaugeOpts("teams_rated",
		"Number of teams holding a rating in the current snapshot"))
	m.leagues = auto.NewGauge(m.gaugeOpts("leagues",
		"Number of leagues in the current snapshot"))
	m.projections = auto.NewCounter(m.counterOpts("projections_total",
		"Total number of matchup projections served"))

	m.reloads = auto.NewCounterVec(m.counterOpts("reloads_total",
		"Total number of snapshot reloads by outcome"), []string{"status"})
	m.reloadDuration = auto.NewHistogram(m.histogramOpts("reload_duration_milliseconds",
		"Snapshot rebuild duration in milliseconds"))
	m.snapshotLastUnix = auto.NewGauge(m.gaugeOpts("snapshot_last_unix",
		"Unix timestamp of the last snapshot publish"))
	m.snapshotLastGameTS = auto.NewGauge(m.gaugeOpts("snapshot_latest_game_unix",
		"Unix timestamp of the most recent game in the snapshot"))

	m.upstreamErrors = auto.NewCounterVec(m.counterOpts("upstream_errors_total",
		"Total number of failed upstream fetches"), []string{"source"})
	m.upstreamLatency = auto.NewHistogramVec(m.histogramOpts("upstream_latency_milliseconds",
		"Upstream fetch latency in milliseconds"), []string{"source"})
	m.cacheRequests = auto.NewCounterVec(m.counterOpts("cache_requests_total",
		"Cache lookups by result"), []string{"result"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
}

// RecordGamesProcessed adds n to the processed games counter.
func RecordGamesProcessed(n int) {
	globalManager.gamesProcessed.Add(float64(n))
}

// RecordGamesSkipped adds n to the skipped games counter.
func RecordGamesSkipped(n int) {
	globalManager.gamesSkipped.Add(float64(n))
}

// UpdateTeamsRated sets the rated teams gauge.
func UpdateTeamsRated(count int) {
	globalManager.teamsRated.Set(float64(count))
}

// UpdateLeagues sets the leagues gauge.
func UpdateLeagues(count int) {
	globalManager.leagues.Set(float64(count))
}

// RecordProjection increments the projections counter.
func RecordProjection() {
	globalManager.projections.Inc()
}

// RecordReload records a snapshot reload outcome and its duration.
func RecordReload(ok bool, durationMs float64) {
	status := "ok"
	if !ok {
		status = "error"
	}
	globalManager.reloads.WithLabelValues(status).Inc()
	globalManager.reloadDuration.Observe(durationMs)
}

// RecordSnapshotPublished stamps the publish time and the latest game date.
func RecordSnapshotPublished(at, latestGame time.Time) {
	globalManager.snapshotLastUnix.Set(float64(at.Unix()))
	if !latestGame.IsZero() {
		globalManager.snapshotLastGameTS.Set(float64(latestGame.Unix()))
	}
}

// RecordUpstreamError increments the failed fetch counter for source.
func RecordUpstreamError(source string) {
	globalManager.upstreamErrors.WithLabelValues(source).Inc()
}

// RecordUpstreamLatency records an upstream fetch latency.
func RecordUpstreamLatency(source string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheRequests.WithLabelValues("hit").Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheRequests.WithLabelValues("miss").Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method string, statusCode int) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, strconv.Itoa(statusCode)).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
