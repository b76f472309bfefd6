// Package metrics owns the gauge registry and the scrape endpoint. The
// registry is populated once at startup from the static catalog; writes
// during a poll cycle go through key lookup and can never mint a new
// metric.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

// Collector holds the pre-registered gauges and the exporter
// self-metrics. Gauge writes are label-scoped and last-write-wins, so
// concurrent use by worker tasks is safe.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	// Catalog gauges keyed by metric name; labels remembers each key's
	// declared dimensions so partial label sets can be zero-filled.
	gauges map[string]*prometheus.GaugeVec
	labels map[string][]string

	// Exporter self-metrics
	taskFailures  *prometheus.CounterVec
	pageFailures  *prometheus.CounterVec
	cycleDuration prometheus.Gauge
	lastSuccess   prometheus.Gauge

	mux    *http.ServeMux
	server *http.Server
}

// Config represents metrics endpoint configuration
type Config struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// NewCollector creates the collector and registers every gauge the
// static catalog declares. After this returns the set of publishable
// metric keys is fixed for the process lifetime.
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = &Config{
			Port: 8000,
			Path: "/metrics",
		}
	}
	if config.Path == "" {
		config.Path = "/metrics"
	}

	registry := prometheus.NewRegistry()

	collector := &Collector{
		config:   config,
		registry: registry,
		gauges:   make(map[string]*prometheus.GaugeVec),
		labels:   make(map[string][]string),
		mux:      http.NewServeMux(),
	}

	if err := collector.initCatalog(); err != nil {
		return nil, fmt.Errorf("failed to initialize metric catalog: %w", err)
	}

	if err := collector.initSelfMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize self metrics: %w", err)
	}

	return collector, nil
}

func (c *Collector) initCatalog() error {
	for _, metric := range catalog.AllMetrics() {
		if _, exists := c.gauges[metric.Key]; exists {
			return fmt.Errorf("duplicate metric key in catalog: %s", metric.Key)
		}

		gauge := prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metric.Key,
				Help: metric.Help,
			},
			metric.Labels,
		)
		if err := c.registry.Register(gauge); err != nil {
			return err
		}

		c.gauges[metric.Key] = gauge
		c.labels[metric.Key] = metric.Labels
	}
	return nil
}

func (c *Collector) initSelfMetrics() error {
	c.taskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutanix_exporter_task_failures_total",
			Help: "Per-entity sampling tasks that failed and were skipped",
		},
		[]string{"kind"},
	)

	c.pageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutanix_exporter_page_failures_total",
			Help: "Entity list pages that failed to fetch and were omitted",
		},
		[]string{"kind"},
	)

	c.cycleDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nutanix_exporter_cycle_duration_seconds",
			Help: "Wall time of the last completed poll cycle",
		},
	)

	c.lastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nutanix_exporter_last_cycle_success_timestamp_seconds",
			Help: "Unix time of the last fully successful poll cycle",
		},
	)

	selfMetrics := []prometheus.Collector{
		c.taskFailures,
		c.pageFailures,
		c.cycleDuration,
		c.lastSuccess,
	}
	for _, metric := range selfMetrics {
		if err := c.registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Set writes one metric triple whose gauge carries a single label
// dimension. The key must have been registered from the catalog.
func (c *Collector) Set(triple catalog.Triple) error {
	gauge, declared, err := c.lookup(triple.Key)
	if err != nil {
		return err
	}
	if len(declared) != 1 {
		return c.SetLabeled(triple.Key, prometheus.Labels{declared[0]: triple.Label}, triple.Value)
	}

	gauge.With(prometheus.Labels{declared[0]: triple.Label}).Set(triple.Value)
	return nil
}

// SetAll writes a batch of triples, logging nothing and failing on the
// first unknown key. Publishing only sees keys the catalog produced, so
// an error here means a programming mistake, not bad upstream data.
func (c *Collector) SetAll(triples []catalog.Triple) error {
	for _, triple := range triples {
		if err := c.Set(triple); err != nil {
			return err
		}
	}
	return nil
}

// SetLabeled writes a gauge with an explicit label set. Declared
// dimensions missing from labels are filled with the empty string.
func (c *Collector) SetLabeled(key string, labels prometheus.Labels, value float64) error {
	gauge, declared, err := c.lookup(key)
	if err != nil {
		return err
	}

	full := make(prometheus.Labels, len(declared))
	for _, name := range declared {
		full[name] = labels[name]
	}
	gauge.With(full).Set(value)
	return nil
}

// SetClusterInfo writes the descriptive cluster info gauge.
func (c *Collector) SetClusterInfo(labels prometheus.Labels) error {
	return c.SetLabeled(catalog.ClusterInfoMetric, labels, 1)
}

func (c *Collector) lookup(key string) (*prometheus.GaugeVec, []string, error) {
	gauge, ok := c.gauges[key]
	if !ok {
		return nil, nil, errors.NewError(errors.ErrCodeUnknownMetric, "metric key was never registered").
			WithComponent("metrics").WithContext("key", key)
	}
	return gauge, c.labels[key], nil
}

// RecordTaskFailure counts one skipped per-entity sampling task.
func (c *Collector) RecordTaskFailure(kind string) {
	c.taskFailures.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordPageFailure counts one omitted list page.
func (c *Collector) RecordPageFailure(kind string) {
	c.pageFailures.With(prometheus.Labels{"kind": kind}).Inc()
}

// ObserveCycle records the duration of a poll cycle and, when the cycle
// saw no kind-level failure, advances the success timestamp.
func (c *Collector) ObserveCycle(duration time.Duration, success bool) {
	c.cycleDuration.Set(duration.Seconds())
	if success {
		c.lastSuccess.SetToCurrentTime()
	}
}

// Handle registers an additional endpoint on the scrape server. Must be
// called before Start.
func (c *Collector) Handle(pattern string, handler http.Handler) {
	c.mux.Handle(pattern, handler)
}

// Start serves the scrape endpoint in the background.
func (c *Collector) Start(ctx context.Context) error {
	c.mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	c.mux.HandleFunc("/health", c.healthHandler)

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           c.mux,
		ReadHeaderTimeout: 30 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Stop shuts the scrape server down.
func (c *Collector) Stop(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy","service":"nutanix-exporter"}`)) // Ignore write error for health check
}
