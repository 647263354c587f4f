package pipeline

import (
	"context"
	"io"
	"strings"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/events"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
)

type statusChange struct {
	status     models.DocumentStatus
	chunkCount *int
}

type fakeDocs struct {
	doc       *models.Document
	getErr    error
	updateErr error
	// when set, UpdateStatus fails only for this status
	failOn  models.DocumentStatus
	changes []statusChange
}

func (f *fakeDocs) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.doc == nil || f.doc.DocumentID != documentID {
		return nil, interfaces.ErrDocumentNotFound
	}
	return f.doc, nil
}

func (f *fakeDocs) Create(ctx context.Context, doc *models.Document) error { return nil }

func (f *fakeDocs) List(ctx context.Context, jurisdiction, taxType string) ([]models.Document, error) {
	return nil, nil
}

func (f *fakeDocs) UpdateStatus(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int) error {
	if f.updateErr != nil && (f.failOn == "" || f.failOn == status) {
		return f.updateErr
	}
	f.changes = append(f.changes, statusChange{status: status, chunkCount: chunkCount})
	return nil
}

type fakeBlobs struct {
	data map[string][]byte
	err  error
}

func (f *fakeBlobs) Download(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[key], nil
}

func (f *fakeBlobs) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	return nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeBlobs) EnsureBucket(ctx context.Context) error       { return nil }
func (f *fakeBlobs) HealthCheck(ctx context.Context) error        { return nil }

type fakeExtractor struct {
	pages []schema.PageText
	err   error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, fileName string) ([]schema.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func (f *fakeExtractor) SupportsFileType(fileName string) bool {
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}

type fakeEmbedder struct {
	dim      int
	embedErr error
	batchErr error
	batches  [][]string
	queries  []string
}

func (f *fakeEmbedder) vector() []float32 {
	dim := f.dim
	if dim == 0 {
		dim = 4
	}
	return make([]float32, dim)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.queries = append(f.queries, text)
	return f.vector(), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.batches = append(f.batches, texts)
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = f.vector()
	}
	return vectors, nil
}

type fakeIndex struct {
	calls      []string
	indexed    []schema.TextChunk
	results    []schema.RetrievedChunk
	deleteErr  error
	indexErr   error
	searchErr  error
	lastFilter *schema.QueryFilters
	lastTopK   int
}

func (f *fakeIndex) EnsureCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) DeleteChunks(ctx context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.calls = append(f.calls, "delete:"+documentID)
	return nil
}

func (f *fakeIndex) IndexChunks(ctx context.Context, chunks []schema.TextChunk) (int, error) {
	if f.indexErr != nil {
		return 0, f.indexErr
	}
	f.calls = append(f.calls, "index")
	f.indexed = chunks
	return len(chunks), nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, vector []float32, filters *schema.QueryFilters, topK int) ([]schema.RetrievedChunk, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.lastFilter = filters
	f.lastTopK = topK
	return f.results, nil
}

func (f *fakeIndex) HealthCheck(ctx context.Context) error { return nil }

type fakeGenerator struct {
	resp   *schema.AskResponse
	err    error
	gotCtx []schema.RetrievedChunk
	model  string
	called bool
}

func (f *fakeGenerator) Generate(ctx context.Context, question string, chunks []schema.RetrievedChunk) (*schema.AskResponse, error) {
	f.called = true
	f.gotCtx = chunks
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeGenerator) Model() string {
	if f.model == "" {
		return "test-model"
	}
	return f.model
}

type fakeAudits struct {
	entries []*models.AuditLog
	err     error
}

func (f *fakeAudits) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudits) Recent(ctx context.Context, count int) ([]models.AuditLog, error) {
	return nil, nil
}

type fakeNotifier struct {
	events []events.StatusEvent
}

func (f *fakeNotifier) Publish(ctx context.Context, event events.StatusEvent) {
	f.events = append(f.events, event)
}
