package response

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"cpfregistry/internal/core/telemetry"
	. "cpfregistry/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultCacheKey = "default"

type ResponseCacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// ResponseCache serves repeated GET requests from memory. Any successful write request
// flushes every cached entry, so a read never outlives the mutation that changed it.
type ResponseCache struct {
	cache   *cache.Cache
	config  map[string]ResponseCacheConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

type CachedResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Timestamp   time.Time
}

func NewResponseCache(logger *zap.Logger, metrics *telemetry.AppMetrics, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		config: map[string]ResponseCacheConfig{
			defaultCacheKey: {
				TTL:     ttl,
				Enabled: ttl > 0,
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (rc *ResponseCache) CacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			rc.invalidateAfterWrite(c)
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		config := rc.configFor(path)
		if !config.Enabled {
			c.Next()
			return
		}

		cacheKey := rc.generateCacheKey(c, path)

		if cachedResp, found := rc.cache.Get(cacheKey); found {
			cached := cachedResp.(CachedResponse)

			_, span := CreateChildSpan(c.Request.Context(), "cache.response.hit", []attribute.KeyValue{
				attribute.String("cache.key", cacheKey),
				attribute.String("cache.path", path),
				attribute.String("cache.age", time.Since(cached.Timestamp).String()),
				attribute.Int("cache.body_size", len(cached.Body)),
			})
			defer span.End()

			if rc.metrics != nil {
				rc.metrics.RecordCacheHit(c.Request.Context(), path)
			}

			rc.logger.Debug("Cache hit",
				zap.String("path", path),
				zap.String("cache_key", cacheKey),
				zap.Duration("age", time.Since(cached.Timestamp)))

			c.Header("X-Cache", "HIT")
			c.Header("X-Cache-Age", fmt.Sprintf("%.0f", time.Since(cached.Timestamp).Seconds()))

			c.Data(cached.StatusCode, cached.ContentType, cached.Body)
			c.Abort()
			return
		}

		if rc.metrics != nil {
			rc.metrics.RecordCacheMiss(c.Request.Context(), path)
		}

		rc.logger.Debug("Cache miss",
			zap.String("path", path),
			zap.String("cache_key", cacheKey))

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		rc.cache.Set(cacheKey, CachedResponse{
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
			Timestamp:   time.Now(),
		}, config.TTL)
	}
}

func (rc *ResponseCache) invalidateAfterWrite(c *gin.Context) {
	status := c.Writer.Status()
	if status >= http.StatusBadRequest || rc.cache.ItemCount() == 0 {
		return
	}

	rc.InvalidateAllCache()
}

func (rc *ResponseCache) configFor(path string) ResponseCacheConfig {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	if config, exists := rc.config[path]; exists {
		return config
	}

	return rc.config[defaultCacheKey]
}

// generateCacheKey keys by route and query. Registry reads do not vary per client.
func (rc *ResponseCache) generateCacheKey(c *gin.Context, path string) string {
	keyParts := []string{path, c.Request.URL.Path}

	if c.Request.URL.RawQuery != "" {
		keyParts = append(keyParts, c.Request.URL.RawQuery)
	}

	hash := md5.Sum([]byte(strings.Join(keyParts, "|")))

	return fmt.Sprintf("cache:%s:%x", path, hash)
}

func (rc *ResponseCache) InvalidateAllCache() {
	rc.cache.Flush()
	rc.logger.Debug("All cache invalidated")
}

func (rc *ResponseCache) SetConfig(path string, config ResponseCacheConfig) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	rc.config[path] = config
}

func (rc *ResponseCache) GetStats() map[string]any {
	rc.mutex.RLock()
	defer rc.mutex.RUnlock()

	return map[string]any{
		"active_entries": rc.cache.ItemCount(),
		"configs":        len(rc.config),
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
