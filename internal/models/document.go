package models

import "time"

// DocumentStatus is the processing state of an uploaded tax document.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "Uploaded"
	StatusProcessing DocumentStatus = "Processing"
	StatusIndexed    DocumentStatus = "Indexed"
	StatusFailed     DocumentStatus = "Failed"
)

// validTransitions is the closed set of allowed status changes. Re-running
// ingestion on an Indexed or Failed document restarts at Processing; any
// failure after Processing lands in Failed.
var validTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:   {StatusProcessing},
	StatusProcessing: {StatusIndexed, StatusFailed},
	StatusIndexed:    {StatusProcessing},
	StatusFailed:     {StatusProcessing},
}

// CanTransition reports whether moving from the current status to the target
// status is allowed.
func (s DocumentStatus) CanTransition(target DocumentStatus) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Document is a tax document record governing ingestion. The combination of
// Jurisdiction, TaxType and Version describes the regulation the file covers.
type Document struct {
	DocumentID    string         `gorm:"primaryKey;size:36" json:"documentId"`
	Title         string         `gorm:"not null;size:500" json:"title"`
	FileName      string         `gorm:"not null;size:500" json:"fileName"`
	BlobKey       string         `gorm:"not null;size:1000" json:"blobKey"`
	ContentType   string         `gorm:"size:255" json:"contentType"`
	FileSizeBytes int64          `json:"fileSizeBytes"`
	Jurisdiction  string         `gorm:"index;size:100" json:"jurisdiction"`
	TaxType       string         `gorm:"index;size:100" json:"taxType"`
	Version       string         `gorm:"size:100" json:"version"`
	EffectiveDate *time.Time     `json:"effectiveDate,omitempty"`
	UploadedBy    string         `gorm:"size:255" json:"uploadedBy"`
	Status        DocumentStatus `gorm:"not null;size:20" json:"status"`
	ChunkCount    *int           `json:"chunkCount,omitempty"`
	IndexedAt     *time.Time     `json:"indexedAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
