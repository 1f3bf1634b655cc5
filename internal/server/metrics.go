package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/entitydiagram/pkg/observability"
)

// Metrics holds the Prometheus collectors fed by the observability hooks and
// the server's own request middleware.
type Metrics struct {
	registry *prometheus.Registry

	events *prometheus.CounterVec

	syncScheduled *prometheus.CounterVec
	syncSkipped   *prometheus.CounterVec
	syncWrites    *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
	syncItems     *prometheus.GaugeVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	upstream         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates collectors under namespace in a private registry.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Change events dispatched, by type and whether they changed the snapshot.",
		}, []string{"type", "applied"}),
		syncScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_scheduled_total",
			Help:      "Overlay write timers started or restarted.",
		}, []string{"domain"}),
		syncSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_skipped_total",
			Help:      "Overlay writes dropped because the collection was unchanged.",
		}, []string{"domain"}),
		syncWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_writes_total",
			Help:      "Overlay write attempts.",
		}, []string{"domain", "status"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_write_duration_seconds",
			Help:      "Overlay write duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"domain"}),
		syncItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_written_items",
			Help:      "Number of records in the last successful overlay write.",
		}, []string{"domain"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Catalog response cache hits.",
		}, []string{"key_type"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Catalog response cache misses.",
		}, []string{"key_type"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests to the catalog API.",
		}, []string{"method", "host", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Catalog API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.events,
		m.syncScheduled, m.syncSkipped, m.syncWrites, m.syncDuration, m.syncItems,
		m.cacheHits, m.cacheMisses,
		m.upstream, m.upstreamDuration,
		m.requests, m.requestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetEventHooks(m)
	observability.SetSyncHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnDispatch(eventType string, applied bool) {
	m.events.WithLabelValues(eventType, strconv.FormatBool(applied)).Inc()
}

func (m *Metrics) OnScheduled(domain string) { m.syncScheduled.WithLabelValues(domain).Inc() }
func (m *Metrics) OnSkipped(domain string)   { m.syncSkipped.WithLabelValues(domain).Inc() }

func (m *Metrics) OnWrite(_ context.Context, domain string, items int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.syncItems.WithLabelValues(domain).Set(float64(items))
	}
	m.syncWrites.WithLabelValues(domain, status).Inc()
	m.syncDuration.WithLabelValues(domain).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(context.Context, string, int) {}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.upstream.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.upstreamDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.upstream.WithLabelValues(method, host, "error").Inc()
}

func (m *Metrics) observeRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
