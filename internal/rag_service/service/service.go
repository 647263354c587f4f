package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"taxcopilot/internal/database/mysql"
	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/pipeline"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/pkg/logger"
)

// UploadRequest carries a new document file and its metadata.
type UploadRequest struct {
	FileName      string
	ContentType   string
	Data          []byte
	Title         string
	Jurisdiction  string
	TaxType       string
	Version       string
	EffectiveDate *time.Time
	UploadedBy    string
}

// UploadResult reports the stored document.
type UploadResult struct {
	DocumentID string `json:"documentId"`
	BlobKey    string `json:"blobKey"`
}

// InitResult reports which resources the init operation created.
type InitResult struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	BucketEnsured     bool   `json:"bucketEnsured"`
	CollectionEnsured bool   `json:"collectionEnsured"`
}

// ComponentHealth is the health-check result of one backing component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

// HealthResult maps component names to their health.
type HealthResult struct {
	Healthy    bool                       `json:"healthy"`
	Components map[string]ComponentHealth `json:"components"`
}

// Service is the application facade over document management, ingestion and
// question answering.
type Service struct {
	log       *logger.Logger
	documents interfaces.DocumentStore
	audits    interfaces.AuditStore
	blobs     interfaces.BlobStore
	index     interfaces.SearchIndex
	extractor interfaces.TextExtractor
	ingestion *pipeline.IngestionPipeline
	query     *pipeline.QueryPipeline
}

// New wires the service facade.
func New(
	documents interfaces.DocumentStore,
	audits interfaces.AuditStore,
	blobs interfaces.BlobStore,
	index interfaces.SearchIndex,
	extractor interfaces.TextExtractor,
	ingestion *pipeline.IngestionPipeline,
	query *pipeline.QueryPipeline,
) *Service {
	return &Service{
		log:       logger.New("rag-service"),
		documents: documents,
		audits:    audits,
		blobs:     blobs,
		index:     index,
		extractor: extractor,
		ingestion: ingestion,
		query:     query,
	}
}

// Upload stores the file and creates the document record in Uploaded status.
// Files whose extension no extractor supports are rejected up front. An empty
// content type is sniffed from the file bytes.
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	if !s.extractor.SupportsFileType(req.FileName) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFormat, req.FileName)
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(req.Data).String()
	}

	documentID := uuid.New().String()
	blobKey := fmt.Sprintf("documents/%s/%s", documentID, req.FileName)

	if err := s.blobs.Upload(ctx, blobKey, bytes.NewReader(req.Data), int64(len(req.Data)), contentType); err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.FileName
	}
	doc := &models.Document{
		DocumentID:    documentID,
		Title:         title,
		FileName:      req.FileName,
		BlobKey:       blobKey,
		ContentType:   contentType,
		FileSizeBytes: int64(len(req.Data)),
		Jurisdiction:  req.Jurisdiction,
		TaxType:       req.TaxType,
		Version:       req.Version,
		EffectiveDate: req.EffectiveDate,
		UploadedBy:    req.UploadedBy,
		Status:        models.StatusUploaded,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		// the record is authoritative, remove the orphaned blob
		if delErr := s.blobs.Delete(ctx, blobKey); delErr != nil {
			s.log.WithError(delErr).Warn(fmt.Sprintf("failed to clean up blob %s", blobKey))
		}
		return nil, err
	}

	s.log.Info(fmt.Sprintf("document %s uploaded (%s, %d bytes)", documentID, req.FileName, len(req.Data)))
	return &UploadResult{DocumentID: documentID, BlobKey: blobKey}, nil
}

// Ingest runs the ingestion pipeline for the document.
func (s *Service) Ingest(ctx context.Context, documentID string) (*schema.IngestResult, error) {
	return s.ingestion.Ingest(ctx, documentID)
}

// Ask answers a question over the indexed corpus.
func (s *Service) Ask(ctx context.Context, question string, filters *schema.QueryFilters, correlationID string) (*schema.AskResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	return s.query.Ask(ctx, question, filters, correlationID)
}

// GetDocument returns the document metadata.
func (s *Service) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	return s.documents.GetByID(ctx, documentID)
}

// ListDocuments returns documents newest first, optionally filtered.
func (s *Service) ListDocuments(ctx context.Context, jurisdiction, taxType string) ([]models.Document, error) {
	return s.documents.List(ctx, jurisdiction, taxType)
}

// RecentAuditLogs returns the newest audit entries.
func (s *Service) RecentAuditLogs(ctx context.Context, count int) ([]models.AuditLog, error) {
	return s.audits.Recent(ctx, count)
}

// InitResources creates the blob bucket and the search collection if needed.
func (s *Service) InitResources(ctx context.Context) (*InitResult, error) {
	result := &InitResult{}

	if err := s.blobs.EnsureBucket(ctx); err != nil {
		result.Message = err.Error()
		return result, err
	}
	result.BucketEnsured = true

	if err := s.index.EnsureCollection(ctx); err != nil {
		result.Message = err.Error()
		return result, err
	}
	result.CollectionEnsured = true

	result.Success = true
	result.Message = "resources initialized"
	return result, nil
}

// Health checks every backing component and reports per-component status.
func (s *Service) Health(ctx context.Context) *HealthResult {
	result := &HealthResult{Healthy: true, Components: map[string]ComponentHealth{}}

	check := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			result.Components[name] = ComponentHealth{Healthy: false, Message: err.Error()}
			result.Healthy = false
			return
		}
		result.Components[name] = ComponentHealth{Healthy: true, Message: "ok"}
	}

	check("sql", mysql.HealthCheck)
	check("blob_storage", s.blobs.HealthCheck)
	check("search_index", s.index.HealthCheck)

	return result
}
