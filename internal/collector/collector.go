// Package collector drives the poll cycle: entity enumeration, stat
// sampling fan-out, cross-reference aggregation, and gauge publishing.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
	"github.com/nutanix-exporter/nutanix-exporter/internal/metrics"
	"github.com/nutanix-exporter/nutanix-exporter/internal/objects"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
	"github.com/nutanix-exporter/nutanix-exporter/internal/redfish"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/status"
)

// Collector runs scheduled collection cycles against one Prism Central
// and publishes the results through the metric registry.
type Collector struct {
	cfg     *config.Configuration
	client  *prism.Client
	metrics *metrics.Collector
	redfish *redfish.Client
	objects *objects.Client
	status  *status.Tracker
	logger  *slog.Logger
}

// New wires a collector for the configured operations mode.
func New(cfg *config.Configuration, registry *metrics.Collector, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collector{
		cfg:     cfg,
		client:  prism.NewClient(cfg.Prism, cfg.Endpoint(), logger),
		metrics: registry,
		status:  status.NewTracker(0),
		logger:  logger,
	}
	if cfg.Exporter.OperationsMode == config.ModeRedfish {
		c.redfish = redfish.NewClient(cfg.Prism.Timeout, logger)
	}
	return c
}

// Run executes one cycle immediately and then one per polling interval
// until the context is canceled. Cycle failures are published, not
// fatal; the loop only stops with its context.
func (c *Collector) Run(ctx context.Context) error {
	c.cycle(ctx)

	ticker := time.NewTicker(c.cfg.Exporter.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.cycle(ctx)
		}
	}
}

// Status exposes the cycle tracker so the HTTP layer can mount its
// endpoint.
func (c *Collector) Status() *status.Tracker {
	return c.status
}

func (c *Collector) cycle(ctx context.Context) {
	start := time.Now()
	c.status.BeginCycle()

	var success bool
	switch c.cfg.Exporter.OperationsMode {
	case config.ModeRedfish:
		success = c.collectRedfish(ctx)
	default:
		success = c.collectV4(ctx)
	}

	elapsed := time.Since(start)
	c.status.EndCycle(elapsed)
	c.metrics.ObserveCycle(elapsed, success)
	c.logger.Info("collection cycle finished",
		slog.Duration("elapsed", elapsed),
		slog.Bool("success", success))
}

// collectRedfish discovers BMC targets from the Prism host inventory and
// polls each chassis for power and thermal readings.
func (c *Collector) collectRedfish(ctx context.Context) bool {
	hosts, err := prism.FetchAll[prism.Host](ctx, c.client, pathHosts, nil,
		prism.DefaultPageSize, c.pageFailure("hosts"))
	if err != nil {
		c.logger.Error("host enumeration failed", slog.String("error", err.Error()))
		return false
	}

	sources := make([]redfish.TargetSource, 0, len(hosts))
	for _, h := range hosts {
		sources = append(sources, redfish.TargetSource{
			Node:        h.HostName,
			IPMIAddress: h.IPMI.IP.IPv4.Value,
			NodeSerial:  h.NodeSerial,
		})
	}

	points := c.redfish.Collect(ctx, redfish.Targets(sources, c.cfg.IPMI))
	for _, p := range points {
		if err := c.metrics.SetLabeled(p.Key, labelsNodeIPMI(p.Node, p.IPMI), p.Value); err != nil {
			c.logger.Error("failed to publish BMC reading",
				slog.String("key", p.Key), slog.String("error", err.Error()))
		}
	}
	return true
}

// pageFailure adapts the registry's page-failure counter to the fetch
// callback signature.
func (c *Collector) pageFailure(kind string) func(page int, err error) {
	return func(page int, err error) {
		c.metrics.RecordPageFailure(kind)
	}
}
