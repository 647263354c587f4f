package dal

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/interfaces"
)

// AuditDAL provides data access methods for query audit records.
type AuditDAL struct {
	db *gorm.DB
}

// NewAuditDAL creates a new AuditDAL.
func NewAuditDAL(db *gorm.DB) *AuditDAL {
	return &AuditDAL{db: db}
}

// Create stores an audit record.
func (dal *AuditDAL) Create(ctx context.Context, entry *models.AuditLog) error {
	if result := dal.db.WithContext(ctx).Create(entry); result.Error != nil {
		return fmt.Errorf("failed to create audit record: %w", result.Error)
	}
	return nil
}

// Recent retrieves the newest audit records, capped at count.
func (dal *AuditDAL) Recent(ctx context.Context, count int) ([]models.AuditLog, error) {
	if count <= 0 {
		count = 50
	}

	var entries []models.AuditLog
	result := dal.db.WithContext(ctx).Order("created_at DESC").Limit(count).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", result.Error)
	}
	return entries, nil
}

var _ interfaces.AuditStore = (*AuditDAL)(nil)
