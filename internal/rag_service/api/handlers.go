package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/internal/rag_service/service"
	"taxcopilot/pkg/logger"
)

// Handler exposes the service operations over HTTP.
type Handler struct {
	log *logger.Logger
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{log: logger.New("api"), svc: svc}
}

type askRequest struct {
	Question string               `json:"question" binding:"required"`
	Filters  *schema.QueryFilters `json:"filters"`
}

// UploadDocument accepts a multipart upload with the file and its metadata
// fields.
func (h *Handler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read file"})
		return
	}

	req := &service.UploadRequest{
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
		Title:        c.PostForm("title"),
		Jurisdiction: c.PostForm("jurisdiction"),
		TaxType:      c.PostForm("taxType"),
		Version:      c.PostForm("version"),
		UploadedBy:   c.PostForm("uploadedBy"),
	}
	if v := c.PostForm("effectiveDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "effectiveDate must be RFC 3339"})
			return
		}
		req.EffectiveDate = &t
	}

	result, err := h.svc.Upload(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListDocuments returns document metadata, optionally filtered by
// jurisdiction and tax type.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), c.Query("jurisdiction"), c.Query("taxType"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// GetDocument returns one document's metadata.
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// IngestDocument runs the ingestion pipeline for the document.
func (h *Handler) IngestDocument(c *gin.Context) {
	result, err := h.svc.Ingest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Ask answers a question over the indexed corpus.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	resp, err := h.svc.Ask(c.Request.Context(), req.Question, req.Filters, correlationID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecentAuditLogs returns the newest audit entries.
func (h *Handler) RecentAuditLogs(c *gin.Context) {
	count := 50
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
			return
		}
		count = n
	}

	entries, err := h.svc.RecentAuditLogs(c.Request.Context(), count)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auditLogs": entries})
}

// Init creates the backing resources.
func (h *Handler) Init(c *gin.Context) {
	result, err := h.svc.InitResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health reports per-component health, 503 when any component is down.
func (h *Handler) Health(c *gin.Context) {
	result := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if !result.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}

// respondError maps domain errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, interfaces.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		h.log.WithCorrelationID(correlationID(c)).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
