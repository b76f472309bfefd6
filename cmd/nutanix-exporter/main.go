package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nutanix-exporter/nutanix-exporter/internal/collector"
	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
	"github.com/nutanix-exporter/nutanix-exporter/internal/metrics"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg := config.NewDefault()
	if *configFile != "" {
		if err := cfg.LoadFromFile(*configFile); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatalf("load environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	registry, err := metrics.NewCollector(&metrics.Config{Port: cfg.Exporter.Port})
	if err != nil {
		logger.Error("metrics setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := collector.New(cfg, registry, logger)
	registry.Handle("/status", c.Status().Handler())

	if err := registry.Start(ctx); err != nil {
		logger.Error("metrics server failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := registry.Stop(context.Background()); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("exporter started",
		"prism", cfg.Endpoint(),
		"port", cfg.Exporter.Port,
		"mode", cfg.Exporter.OperationsMode,
		"interval", cfg.Exporter.PollingInterval)

	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("collector runtime failed", "error", err)
		os.Exit(1)
	}

	logger.Info("exporter stopped")
}

func buildLogger(cfg *config.Configuration) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
