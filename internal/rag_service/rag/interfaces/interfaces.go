package interfaces

import (
	"context"
	"errors"
	"io"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/schema"
)

// ErrDocumentNotFound is returned when a document id resolves to no stored
// document.
var ErrDocumentNotFound = errors.New("document not found")

// ErrUnsupportedFormat is returned when no extractor can handle the document's
// file type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// TextExtractor turns raw file bytes into page-ordered text.
type TextExtractor interface {
	// Extract returns the document's text split by page, in page order.
	// Formats without physical pages report estimated page boundaries.
	Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error)

	// SupportsFileType reports whether the extractor handles the file name's
	// extension.
	SupportsFileType(fileName string) bool
}

// EmbeddingModel produces vector representations of text.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchIndex stores chunk vectors and serves hybrid retrieval.
type SearchIndex interface {
	// EnsureCollection creates the chunk collection and its vector index if
	// they do not already exist.
	EnsureCollection(ctx context.Context) error

	// DeleteChunks removes every indexed chunk belonging to the document.
	// Deleting chunks of an unindexed document is not an error.
	DeleteChunks(ctx context.Context, documentID string) error

	// IndexChunks writes the chunks and returns how many were accepted.
	IndexChunks(ctx context.Context, chunks []schema.TextChunk) (int, error)

	// Search retrieves the topK chunks most relevant to the query, restricted
	// to exact matches on any non-empty filter field.
	Search(ctx context.Context, query string, vector []float32, filters *schema.QueryFilters, topK int) ([]schema.RetrievedChunk, error)

	HealthCheck(ctx context.Context) error
}

// AnswerGenerator produces a grounded answer from retrieved context.
type AnswerGenerator interface {
	// Generate answers the question using only the provided chunks.
	Generate(ctx context.Context, question string, chunks []schema.RetrievedChunk) (*schema.AskResponse, error)

	// Model returns the chat model identifier for audit records.
	Model() string
}

// DocumentStore persists document metadata and status.
type DocumentStore interface {
	// GetByID returns ErrDocumentNotFound when no document has the id.
	GetByID(ctx context.Context, documentID string) (*models.Document, error)

	Create(ctx context.Context, doc *models.Document) error

	List(ctx context.Context, jurisdiction, taxType string) ([]models.Document, error)

	// UpdateStatus transitions the document's lifecycle status. chunkCount is
	// recorded and IndexedAt stamped when the target status is Indexed.
	UpdateStatus(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int) error
}

// BlobStore persists original document files.
type BlobStore interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

// AuditStore persists query audit records.
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	Recent(ctx context.Context, count int) ([]models.AuditLog, error)
}
