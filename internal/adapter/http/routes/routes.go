package routes

import (
	"net/http"

	"cpfregistry/internal/adapter/http/handler"
	"cpfregistry/internal/adapter/http/middleware"
	"cpfregistry/internal/core/telemetry"
	. "cpfregistry/pkg/config"
	. "cpfregistry/pkg/middlewares"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	UserHandler *handler.UserHandler
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *Logger, config *AppConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CurrentMiddleware())

	SetupGinMiddlewareWithConfig(router, metrics, logger, config)

	router.Use(corsMiddleware())

	setupHealthRoutes(router)

	if handlers.UserHandler != nil {
		setupUserRoutes(router, handlers.UserHandler)
	}

	return router
}

// SetupRouterForTests skips tracing, rate limiting and the response cache.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CurrentMiddleware())
	router.Use(corsMiddleware())

	setupHealthRoutes(router)

	if handlers.UserHandler != nil {
		setupUserRoutes(router, handlers.UserHandler)
	}

	return router
}

func setupHealthRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func setupUserRoutes(router *gin.Engine, userHandler *handler.UserHandler) {
	users := router.Group("/user")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.GetAllUsers)
		users.POST("/spreadsheet", userHandler.ImportSpreadsheet)
		users.GET("/spreadsheet", userHandler.ExportSpreadsheet)
		users.GET("/:id", userHandler.GetUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.PATCH("/:id/name", userHandler.EditName)
		users.PATCH("/:id/cpf", userHandler.EditCpf)
		users.PATCH("/:id/email", userHandler.EditEmail)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
