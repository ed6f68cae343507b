package middlewares

import (
	"time"

	"cpfregistry/internal/core/telemetry"
	. "cpfregistry/pkg/config"
	. "cpfregistry/pkg/response"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// SetupGinMiddlewareWithConfig installs the HTTPS redirect, tracing, access log, rate limiter,
// response cache and request metrics, in that order.
func SetupGinMiddlewareWithConfig(router *gin.Engine, metrics *telemetry.AppMetrics, logger *Logger, config *AppConfig) {
	router.Use(NewHTTPSEnforcer(logger.Zap(), config.EnforceHTTPS).HTTPSMiddleware())

	router.Use(otelgin.Middleware(config.ServiceName))

	router.Use(LoggingMiddleware(logger))

	if config.RateLimitEnabled {
		rateLimiter := NewRateLimiter(logger.Zap(), metrics, config.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	if config.Cache.Enabled {
		responseCache := NewResponseCache(logger.Zap(), metrics, config.Cache.TTL)
		router.Use(responseCache.CacheMiddleware())
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}
}
