package routes

import (
	"net/http"

	"safewatch/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupSystemRoutes mounts operational endpoints at the root.
func SetupSystemRoutes(r *gin.Engine, healthHandler *handlers.HealthHandler, metricsHandler http.Handler) {
	r.GET("/health", healthHandler.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
