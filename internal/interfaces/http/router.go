// Package http assembles the gin router and the HTTP server for the docrisk
// apiserver.
package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/prometheus"
	"github.com/docuvault/docrisk/internal/interfaces/http/handlers"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Entities *handlers.EntitiesHandler
	Health   *handlers.HealthHandler
	Logger   logging.Logger
	Metrics  *prometheus.Collector
}

// NewRouter builds the gin engine with logging and metrics middleware and
// all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestObserver(deps.Logger, deps.Metrics))

	router.GET("/healthz", deps.Health.Live)
	router.GET("/readyz", deps.Health.Ready)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/entities", deps.Entities.List)
	}

	return router
}

// requestObserver logs each request and records HTTP metrics.  Probe and
// metrics endpoints are excluded from logging to keep the output useful.
func requestObserver(logger logging.Logger, metrics *prometheus.Collector) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		switch route {
		case "/healthz", "/readyz", "/metrics":
			return
		}
		logger.Info("request handled",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
		)
	}
}
