package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jroosing/minidns/internal/api/handlers"
	"github.com/jroosing/minidns/internal/api/middleware"
	"github.com/jroosing/minidns/internal/config"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	api := r.Group("/api/v1")

	// Health stays reachable for probes without the key.
	api.GET("/health", h.Health)

	protected := api.Group("")
	if cfg != nil && cfg.API.APIKey != "" {
		protected.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}

	protected.GET("/stats", h.Stats)
	protected.GET("/records", h.ListRecords)
	protected.GET("/records/:name", h.GetRecord)
	protected.GET("/resolve", h.Resolve)
}
