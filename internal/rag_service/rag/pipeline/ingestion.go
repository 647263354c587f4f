package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/events"
	"taxcopilot/internal/rag_service/rag/chunker"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/pkg/logger"
)

// StatusNotifier receives best-effort document status events.
type StatusNotifier interface {
	Publish(ctx context.Context, event events.StatusEvent)
}

// IngestionPipeline runs the full ingestion flow for one document: download,
// extract, chunk, embed, replace the document's index entries and record the
// outcome on the document.
type IngestionPipeline struct {
	log       *logger.Logger
	documents interfaces.DocumentStore
	blobs     interfaces.BlobStore
	extractor interfaces.TextExtractor
	chunker   *chunker.Chunker
	embedder  interfaces.EmbeddingModel
	index     interfaces.SearchIndex
	notifier  StatusNotifier
}

// NewIngestionPipeline wires the ingestion collaborators. notifier may be nil
// when status events are disabled.
func NewIngestionPipeline(
	documents interfaces.DocumentStore,
	blobs interfaces.BlobStore,
	extractor interfaces.TextExtractor,
	chk *chunker.Chunker,
	embedder interfaces.EmbeddingModel,
	index interfaces.SearchIndex,
	notifier StatusNotifier,
) *IngestionPipeline {
	return &IngestionPipeline{
		log:       logger.New("ingestion-pipeline"),
		documents: documents,
		blobs:     blobs,
		extractor: extractor,
		chunker:   chk,
		embedder:  embedder,
		index:     index,
		notifier:  notifier,
	}
}

// Ingest processes the document end to end. Unknown documents and unsupported
// formats fail before the document is touched; any failure after the document
// entered Processing moves it to Failed and the error propagates. Existing
// index entries of the document are deleted before the new ones are written,
// so re-ingestion never leaves stale chunks behind.
func (p *IngestionPipeline) Ingest(ctx context.Context, documentID string) (*schema.IngestResult, error) {
	start := time.Now()
	log := p.log.WithPayload(map[string]interface{}{"document_id": documentID})
	log.Info("starting ingestion")

	doc, err := p.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !p.extractor.SupportsFileType(doc.FileName) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFormat, filepath.Ext(doc.FileName))
	}

	if err := p.setStatus(ctx, documentID, models.StatusProcessing, nil, ""); err != nil {
		return nil, err
	}

	result, err := p.run(ctx, doc)
	if err == nil {
		// the Indexed write is part of the run: if it fails the document
		// must not stay in Processing
		if statusErr := p.setStatus(ctx, documentID, models.StatusIndexed, &result.ChunksCreated, ""); statusErr != nil {
			err = fmt.Errorf("failed to record indexed status: %w", statusErr)
		}
	}
	if err != nil {
		log.WithError(err).Error("ingestion failed")
		p.setStatusBestEffort(ctx, documentID, models.StatusFailed, nil, err.Error())
		return nil, err
	}

	result.ElapsedMs = time.Since(start).Milliseconds()
	log.WithPayload(map[string]interface{}{
		"chunks_created": result.ChunksCreated,
		"chunks_indexed": result.ChunksIndexed,
		"elapsed_ms":     result.ElapsedMs,
	}).Info("ingestion completed")
	return result, nil
}

func (p *IngestionPipeline) run(ctx context.Context, doc *models.Document) (*schema.IngestResult, error) {
	log := p.log.WithPayload(map[string]interface{}{"document_id": doc.DocumentID})

	data, err := p.blobs.Download(ctx, doc.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download document blob: %w", err)
	}

	pages, err := p.extractor.Extract(ctx, data, doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if len(pages) == 0 {
		log.Warn("no text extracted from document")
	}

	chunks, err := p.chunker.Chunk(ctx, schema.DocumentInfo{
		DocumentID:    doc.DocumentID,
		DocumentTitle: doc.Title,
		Jurisdiction:  doc.Jurisdiction,
		TaxType:       doc.TaxType,
		Version:       doc.Version,
		EffectiveDate: doc.EffectiveDate,
	}, pages)
	if err != nil {
		return nil, fmt.Errorf("failed to chunk document: %w", err)
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.ChunkText
		}
		embeddings, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(embeddings) != len(chunks) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	// re-ingestion must not leave chunks of the previous version behind
	if err := p.index.DeleteChunks(ctx, doc.DocumentID); err != nil {
		return nil, fmt.Errorf("failed to delete existing chunks: %w", err)
	}

	indexed, err := p.index.IndexChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}

	return &schema.IngestResult{
		DocumentID:    doc.DocumentID,
		ChunksCreated: len(chunks),
		ChunksIndexed: indexed,
	}, nil
}

func (p *IngestionPipeline) setStatus(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int, errMsg string) error {
	if err := p.documents.UpdateStatus(ctx, documentID, status, chunkCount); err != nil {
		return err
	}
	p.notify(ctx, documentID, status, chunkCount, errMsg)
	return nil
}

func (p *IngestionPipeline) setStatusBestEffort(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int, errMsg string) {
	// the primary error is already on its way to the caller
	if err := p.documents.UpdateStatus(context.WithoutCancel(ctx), documentID, status, chunkCount); err != nil {
		p.log.WithError(err).Error(fmt.Sprintf("failed to mark document %s as %s", documentID, status))
		return
	}
	p.notify(ctx, documentID, status, chunkCount, errMsg)
}

func (p *IngestionPipeline) notify(ctx context.Context, documentID string, status models.DocumentStatus, chunkCount *int, errMsg string) {
	if p.notifier == nil {
		return
	}
	p.notifier.Publish(context.WithoutCancel(ctx), events.StatusEvent{
		DocumentID: documentID,
		Status:     status,
		ChunkCount: chunkCount,
		Error:      errMsg,
	})
}
