// Package api implements the HTTP API for the ingestion service.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsclip/newsclip/internal/config"
	"github.com/newsclip/newsclip/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(log logger.Interface, configs *ConfigsHandler, runs *RunsHandler, articles *ArticlesHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	api.GET("/configs", configs.List)
	api.GET("/configs/:id", configs.Get)
	api.POST("/configs/:id/run", configs.TriggerRun)
	api.POST("/configs/run-all", configs.TriggerAll)
	api.GET("/configs/:id/runs", runs.ListByConfig)

	api.GET("/runs/:id", runs.Get)
	api.GET("/runs/:id/log", runs.GetLog)

	api.GET("/vehicles/:id/articles", articles.ListByVehicle)

	return router
}

// NewHTTPServer builds the http.Server around the router.
func NewHTTPServer(cfg config.ServerConfig, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// loggingMiddleware creates a middleware that logs HTTP requests.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
