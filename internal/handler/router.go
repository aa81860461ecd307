package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/models"
)

// Metrics is the instrumentation the router mounts.
type Metrics interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

// NewRouter builds the gin engine. metrics may be nil.
func NewRouter(h *Handlers, metrics Metrics, logger logging.Logger) *gin.Engine {
	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware())
	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	router.GET("/health", h.Health())

	api := router.Group("/api")
	for _, p := range models.Providers {
		group := api.Group("/" + string(p))
		group.POST("/auth", h.Auth(p))
		group.POST("/fetch", h.Fetch(p))
		group.POST("/import", h.Import(p))
	}
	api.POST("/generate", h.Generate())

	return router
}
