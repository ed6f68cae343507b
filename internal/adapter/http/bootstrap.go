package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cpfregistry/internal/adapter/http/routes"
	"cpfregistry/internal/core/port"
	"cpfregistry/internal/core/telemetry"
	"cpfregistry/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// StartServerWithConfig serves the registry until ctx is cancelled, then drains in-flight requests.
func StartServerWithConfig(ctx context.Context, cfg *config.AppConfig, logger *config.Logger, metrics *telemetry.AppMetrics, probe port.Telemetry) error {
	gin.SetMode(cfg.GinMode)

	container, err := NewContainer(ctx, cfg, logger, probe)

	if err != nil {
		return err
	}
	defer container.Close()

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		UserHandler: container.UserHandler,
	}, metrics, logger, cfg)

	logger.InfoWithTrace(ctx, "Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.InfoWithTrace(context.Background(), "Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
