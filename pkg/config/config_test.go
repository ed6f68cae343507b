package config

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "database.db", cfg.Database.Path)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, 3*time.Second, cfg.Cache.TTL)
		assert.Contains(t, cfg.RateLimitConfigs, "POST /user/spreadsheet")
		assert.False(t, cfg.EnforceHTTPS)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("DATABASE_DRIVER", DriverMemory)
		t.Setenv("CACHE_TTL", "10s")
		t.Setenv("CACHE_ENABLED", "false")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, DriverMemory, cfg.Database.Driver)
		assert.Equal(t, 10*time.Second, cfg.Cache.TTL)
		assert.False(t, cfg.Cache.Enabled)
	})

	t.Run("Release mode enforces HTTPS", func(t *testing.T) {
		t.Setenv("GIN_MODE", "release")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Environment)
		assert.True(t, cfg.EnforceHTTPS)
	})

	t.Run("Postgres without url", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", DriverPostgres)

		_, err := Load()

		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("Unknown driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mongo")

		_, err := Load()

		assert.ErrorContains(t, err, "unknown DATABASE_DRIVER")
	})
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cpfregistry", cfg.ServiceName)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
}

func TestHTTPSEnforcer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(enabled bool) *gin.Engine {
		router := gin.New()
		router.Use(NewHTTPSEnforcer(zap.NewNop(), enabled).HTTPSMiddleware())
		router.GET("/user", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("Disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/user", nil)
		newRouter(false).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Redirects plain http", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/user", nil)
		newRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://api.example.com/user", w.Header().Get("Location"))
	})

	t.Run("Keeps the method of writes", func(t *testing.T) {
		router := gin.New()
		router.Use(NewHTTPSEnforcer(zap.NewNop(), true).HTTPSMiddleware())
		router.PATCH("/user/:id/name", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "http://api.example.com/user/1/name", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPermanentRedirect, w.Code)
		assert.Equal(t, "https://api.example.com/user/1/name", w.Header().Get("Location"))
	})

	t.Run("Trusts the forwarded proto", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/user", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		newRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Skips localhost", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/user", nil)
		newRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
