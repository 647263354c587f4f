package searchindex

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"taxcopilot/internal/database/milvus"
	"taxcopilot/internal/rag_service/rag/interfaces"
	"taxcopilot/internal/rag_service/rag/schema"
	"taxcopilot/pkg/logger"
)

// Collection fields for indexed chunks.
const (
	FieldChunkID        = "chunk_id"
	FieldDocumentID     = "document_id"
	FieldDocumentTitle  = "document_title"
	FieldChunkText      = "chunk_text"
	FieldJurisdiction   = "jurisdiction"
	FieldTaxType        = "tax_type"
	FieldVersion        = "version"
	FieldPageNumber     = "page_number"
	FieldSectionHeading = "section_heading"
	FieldEmbedding      = "embedding"
)

// MilvusIndex stores chunk vectors and metadata in a Milvus collection and
// serves filtered vector retrieval.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusIndex creates a MilvusIndex over the shared Milvus client. dim is
// the embedding dimensionality used when the collection is first created.
func NewMilvusIndex(milvusClient *milvus.MilvusClient, collection string, dim int) (*MilvusIndex, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dim)
	}
	return &MilvusIndex{
		log:        logger.New("search-index"),
		client:     milvusClient.Client,
		collection: collection,
		dim:        dim,
	}, nil
}

// EnsureCollection creates the chunk collection with its vector index if it
// does not exist, then loads it for querying.
func (s *MilvusIndex) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}

	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("tax document chunks").
			WithField(entity.NewField().WithName(FieldChunkID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldDocumentID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldDocumentTitle).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(FieldChunkText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(FieldJurisdiction).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldTaxType).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldVersion).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldPageNumber).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldSectionHeading).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.L2, 128)
		if err != nil {
			return fmt.Errorf("failed to build vector index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create vector index: %w", err)
		}
		s.log.Info(fmt.Sprintf("created collection %s (dim=%d)", s.collection, s.dim))
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", s.collection, err)
	}
	return nil
}

// DeleteChunks removes every indexed chunk of the document. Deleting for a
// document with no indexed chunks is a no-op.
func (s *MilvusIndex) DeleteChunks(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf(`%s == "%s"`, FieldDocumentID, documentID)
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return fmt.Errorf("failed to delete chunks of document %s: %w", documentID, err)
	}
	return nil
}

// IndexChunks inserts the chunks as one batch and returns how many were
// accepted.
func (s *MilvusIndex) IndexChunks(ctx context.Context, chunks []schema.TextChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	n := len(chunks)
	chunkIDs := make([]string, n)
	documentIDs := make([]string, n)
	titles := make([]string, n)
	texts := make([]string, n)
	jurisdictions := make([]string, n)
	taxTypes := make([]string, n)
	versions := make([]string, n)
	pageNumbers := make([]int64, n)
	headings := make([]string, n)
	embeddings := make([][]float32, n)

	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dim {
			return 0, fmt.Errorf("chunk %s has embedding dimension %d, want %d", chunk.ChunkID, len(chunk.Embedding), s.dim)
		}
		chunkIDs[i] = chunk.ChunkID
		documentIDs[i] = chunk.DocumentID
		titles[i] = chunk.DocumentTitle
		texts[i] = chunk.ChunkText
		jurisdictions[i] = chunk.Jurisdiction
		taxTypes[i] = chunk.TaxType
		versions[i] = chunk.Version
		pageNumbers[i] = int64(chunk.PageNumberStart)
		headings[i] = chunk.SectionHeading
		embeddings[i] = chunk.Embedding
	}

	s.log.Info(fmt.Sprintf("indexing %d chunks into collection %s", n, s.collection))
	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(FieldChunkID, chunkIDs),
		entity.NewColumnVarChar(FieldDocumentID, documentIDs),
		entity.NewColumnVarChar(FieldDocumentTitle, titles),
		entity.NewColumnVarChar(FieldChunkText, texts),
		entity.NewColumnVarChar(FieldJurisdiction, jurisdictions),
		entity.NewColumnVarChar(FieldTaxType, taxTypes),
		entity.NewColumnVarChar(FieldVersion, versions),
		entity.NewColumnInt64(FieldPageNumber, pageNumbers),
		entity.NewColumnVarChar(FieldSectionHeading, headings),
		entity.NewColumnFloatVector(FieldEmbedding, s.dim, embeddings),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert chunks: %w", err)
	}
	return n, nil
}

// Search retrieves the topK most similar chunks, restricted to exact matches
// on any non-empty filter field.
func (s *MilvusIndex) Search(ctx context.Context, query string, vector []float32, filters *schema.QueryFilters, topK int) ([]schema.RetrievedChunk, error) {
	filterExpr := buildFilterExpression(filters)
	outputFields := []string{
		FieldChunkID, FieldDocumentID, FieldDocumentTitle, FieldChunkText,
		FieldPageNumber, FieldSectionHeading,
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := s.client.Search(
		ctx, s.collection, []string{}, filterExpr, outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.L2, topK, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", s.collection, err)
	}

	var chunks []schema.RetrievedChunk
	for _, res := range results {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		chunkIDCol, ok := findColumn(FieldChunkID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("search result missing chunk_id column, skipping")
			continue
		}
		docIDCol, _ := findColumn(FieldDocumentID).(*entity.ColumnVarChar)
		titleCol, _ := findColumn(FieldDocumentTitle).(*entity.ColumnVarChar)
		textCol, _ := findColumn(FieldChunkText).(*entity.ColumnVarChar)
		pageCol, _ := findColumn(FieldPageNumber).(*entity.ColumnInt64)
		headingCol, _ := findColumn(FieldSectionHeading).(*entity.ColumnVarChar)

		for i := 0; i < res.ResultCount; i++ {
			chunk := schema.RetrievedChunk{
				ChunkID: chunkIDCol.Data()[i],
				Score:   float64(res.Scores[i]),
			}
			if docIDCol != nil {
				chunk.DocumentID = docIDCol.Data()[i]
			}
			if titleCol != nil {
				chunk.DocumentTitle = titleCol.Data()[i]
			}
			if textCol != nil {
				chunk.ChunkText = textCol.Data()[i]
			}
			if pageCol != nil {
				chunk.PageNumber = int(pageCol.Data()[i])
			}
			if headingCol != nil {
				chunk.SectionHeading = headingCol.Data()[i]
			}
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

// HealthCheck verifies the collection is reachable.
func (s *MilvusIndex) HealthCheck(ctx context.Context) error {
	if _, err := s.client.HasCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// buildFilterExpression renders the non-empty filter fields as an exact-match
// conjunction.
func buildFilterExpression(filters *schema.QueryFilters) string {
	if filters == nil {
		return ""
	}

	var conditions []string
	add := func(field, value string) {
		if value != "" {
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, field, strings.ReplaceAll(value, `"`, `\"`)))
		}
	}
	add(FieldJurisdiction, filters.Jurisdiction)
	add(FieldTaxType, filters.TaxType)
	add(FieldVersion, filters.Version)

	return strings.Join(conditions, " and ")
}

var _ interfaces.SearchIndex = (*MilvusIndex)(nil)
