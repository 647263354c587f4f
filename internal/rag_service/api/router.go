package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes for the service.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.Use(CorrelationID())

	v1 := router.Group("/api/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("", h.UploadDocument)
			documents.GET("", h.ListDocuments)
			documents.GET("/:id", h.GetDocument)
			documents.POST("/:id/ingest", h.IngestDocument)
		}

		v1.POST("/ask", h.Ask)

		v1.GET("/audit/recent", h.RecentAuditLogs)

		admin := v1.Group("/admin")
		{
			admin.POST("/init", h.Init)
			admin.GET("/health", h.Health)
		}
	}
}
