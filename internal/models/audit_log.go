package models

import "time"

// AuditLog records one RAG query attempt. Entries are append-only: exactly one
// is written per attempt, whether the attempt succeeded or failed.
type AuditLog struct {
	AuditLogID          string    `gorm:"primaryKey;size:36" json:"auditLogId"`
	CorrelationID       string    `gorm:"index;size:100" json:"correlationId"`
	QueryText           string    `gorm:"type:text;not null" json:"queryText"`
	FiltersJSON         *string   `gorm:"type:text" json:"filtersJson,omitempty"`
	RetrievedChunksJSON *string   `gorm:"type:text" json:"retrievedChunksJson,omitempty"`
	Model               string    `gorm:"size:100" json:"model"`
	PromptVersion       string    `gorm:"size:20" json:"promptVersion"`
	AnswerText          *string   `gorm:"type:text" json:"answerText,omitempty"`
	LatencyMs           int64     `json:"latencyMs"`
	ErrorMessage        *string   `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt           time.Time `gorm:"index" json:"createdAt"`
}
