package router

import (
	"github.com/gin-gonic/gin"

	"lifedash/internal/handler"
	"lifedash/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	ingestH *handler.IngestHandler,
	entryH *handler.EntryHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())

	// Smart-scan pipeline
	v1.POST("/ingest", ingestH.Ingest)

	// Life-domain record store
	entries := v1.Group("/entries")
	entries.POST("", entryH.Create)
	entries.POST("/from-ingestion", entryH.CreateFromIngestion)
	entries.GET("", entryH.List)
	entries.GET("/:id", entryH.GetByID)
	entries.GET("/:id/archive-url", entryH.GetArchiveURL)
	entries.PUT("/:id", entryH.Update)
	entries.DELETE("/:id", entryH.Delete)

	return r
}
