package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "cpfregistry/internal/adapter/http"
	"cpfregistry/internal/adapter/telemetry"
	"cpfregistry/pkg/config"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()

	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.ServiceName, cfg.LokiURL)

	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger.Logger)

	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shut down telemetry", zap.Error(err))
		}
	}()

	tel.AppMetrics.StartSystemMetrics(ctx)

	return server.StartServerWithConfig(ctx, cfg, logger, tel.AppMetrics, tel.NewTelemetryProbe())
}
