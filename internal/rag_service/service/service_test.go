package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

type memDocs struct {
	created []*models.Document
	err     error
}

func (m *memDocs) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return nil, interfaces.ErrDocumentNotFound
}

func (m *memDocs) Create(ctx context.Context, doc *models.Document) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, doc)
	return nil
}

func (m *memDocs) List(ctx context.Context, jurisdiction, taxType string) ([]models.Document, error) {
	return nil, nil
}

func (m *memDocs) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, chunkCount *int) error {
	return nil
}

type memBlobs struct {
	uploaded map[string][]byte
	deleted  []string
}

func (m *memBlobs) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	b, _ := io.ReadAll(data)
	m.uploaded[key] = b
	return nil
}

func (m *memBlobs) Download(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memBlobs) EnsureBucket(ctx context.Context) error { return nil }
func (m *memBlobs) HealthCheck(ctx context.Context) error  { return nil }

func newService(docs *memDocs, blobs *memBlobs) *Service {
	return New(docs, nil, blobs, nil, pdfOnlyExtractor{}, nil, nil)
}

type pdfOnlyExtractor struct{}

func (pdfOnlyExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	return nil, nil
}

func (pdfOnlyExtractor) SupportsFileType(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}

func TestUploadCreatesDocumentRecord(t *testing.T) {
	docs := &memDocs{}
	blobs := &memBlobs{}
	s := newService(docs, blobs)

	result, err := s.Upload(context.Background(), &UploadRequest{
		FileName:     "vat_act.pdf",
		Data:         []byte("%PDF-1.7 content"),
		Title:        "VAT Act 2024",
		Jurisdiction: "DE",
		TaxType:      "VAT",
		Version:      "2024",
		UploadedBy:   "analyst",
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.DocumentID == "" {
		t.Fatal("expected a document id")
	}
	if len(docs.created) != 1 {
		t.Fatalf("expected 1 document record, got %d", len(docs.created))
	}

	doc := docs.created[0]
	if doc.Status != models.StatusUploaded {
		t.Errorf("expected Uploaded status, got %s", doc.Status)
	}
	if doc.Title != "VAT Act 2024" || doc.FileSizeBytes != 16 {
		t.Errorf("unexpected record: %+v", doc)
	}
	if _, ok := blobs.uploaded[doc.BlobKey]; !ok {
		t.Errorf("blob not stored under %s", doc.BlobKey)
	}
	if doc.ContentType == "" {
		t.Error("content type not sniffed")
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	s := newService(&memDocs{}, &memBlobs{})

	_, err := s.Upload(context.Background(), &UploadRequest{
		FileName: "slides.pptx",
		Data:     []byte("data"),
	})
	if !errors.Is(err, interfaces.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	s := newService(&memDocs{}, &memBlobs{})

	if _, err := s.Upload(context.Background(), &UploadRequest{FileName: "a.pdf"}); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestUploadCleansUpBlobOnRecordFailure(t *testing.T) {
	docs := &memDocs{err: errors.New("db down")}
	blobs := &memBlobs{}
	s := newService(docs, blobs)

	_, err := s.Upload(context.Background(), &UploadRequest{
		FileName: "vat_act.pdf",
		Data:     []byte("content"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(blobs.deleted) != 1 {
		t.Errorf("expected orphaned blob to be deleted, got %v", blobs.deleted)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	s := newService(&memDocs{}, &memBlobs{})

	if _, err := s.Ask(context.Background(), "   ", nil, "corr-1"); err == nil {
		t.Fatal("expected error for empty question")
	}
}
