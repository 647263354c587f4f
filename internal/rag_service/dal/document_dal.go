package dal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/interfaces"
)

// DocumentDAL provides data access methods for tax documents.
type DocumentDAL struct {
	db *gorm.DB
}

// NewDocumentDAL creates a new DocumentDAL.
func NewDocumentDAL(db *gorm.DB) *DocumentDAL {
	return &DocumentDAL{db: db}
}

// Create stores a new document record.
func (dal *DocumentDAL) Create(ctx context.Context, doc *models.Document) error {
	if result := dal.db.WithContext(ctx).Create(doc); result.Error != nil {
		return fmt.Errorf("failed to create document: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a document by its id. It returns ErrDocumentNotFound when
// no document has the id.
func (dal *DocumentDAL) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	var doc models.Document
	result := dal.db.WithContext(ctx).Where("document_id = ?", documentID).First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, interfaces.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document %s: %w", documentID, result.Error)
	}
	return &doc, nil
}

// List retrieves documents newest first, optionally filtered by jurisdiction
// and tax type.
func (dal *DocumentDAL) List(ctx context.Context, jurisdiction, taxType string) ([]models.Document, error) {
	query := dal.db.WithContext(ctx).Order("created_at DESC")
	if jurisdiction != "" {
		query = query.Where("jurisdiction = ?", jurisdiction)
	}
	if taxType != "" {
		query = query.Where("tax_type = ?", taxType)
	}

	var docs []models.Document
	if result := query.Find(&docs); result.Error != nil {
		return nil, fmt.Errorf("failed to list documents: %w", result.Error)
	}
	return docs, nil
}

// UpdateStatus transitions the document to the given lifecycle status,
// rejecting transitions the state machine does not allow. When the target
// status is Indexed the chunk count and index time are recorded.
func (dal *DocumentDAL) UpdateStatus(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int) error {
	return dal.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		result := tx.Where("document_id = ?", documentID).First(&doc)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return interfaces.ErrDocumentNotFound
			}
			return fmt.Errorf("failed to load document %s: %w", documentID, result.Error)
		}

		if !doc.Status.CanTransition(status) {
			return fmt.Errorf("invalid status transition %s -> %s for document %s", doc.Status, status, documentID)
		}

		updates := map[string]interface{}{"status": status}
		if status == models.StatusIndexed {
			updates["chunk_count"] = chunkCount
			now := time.Now().UTC()
			updates["indexed_at"] = &now
		}

		if result := tx.Model(&doc).Updates(updates); result.Error != nil {
			return fmt.Errorf("failed to update status of document %s: %w", documentID, result.Error)
		}
		return nil
	})
}

var _ interfaces.DocumentStore = (*DocumentDAL)(nil)
