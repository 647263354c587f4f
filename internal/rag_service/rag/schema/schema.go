package schema

import "time"

// PageText is the extracted text of a single physical or estimated page. It
// only lives inside one ingestion run.
type PageText struct {
	PageNumber int
	Text       string
}

// DocumentInfo carries the document metadata stamped onto every chunk the
// chunker produces from that document.
type DocumentInfo struct {
	DocumentID    string
	DocumentTitle string
	Jurisdiction  string
	TaxType       string
	Version       string
	EffectiveDate *time.Time
}

// TextChunk is an overlapping, size-bounded unit of document text destined for
// the search index. The embedding is attached by the ingestion pipeline after
// chunking.
type TextChunk struct {
	ChunkID         string
	DocumentID      string
	DocumentTitle   string
	ChunkText       string
	PageNumberStart int
	PageNumberEnd   int
	SectionHeading  string
	Jurisdiction    string
	TaxType         string
	Version         string
	EffectiveDate   *time.Time
	Embedding       []float32
}

// RetrievedChunk is the query-side projection of an indexed chunk returned by
// search, ranked by score.
type RetrievedChunk struct {
	ChunkID        string  `json:"chunkId"`
	DocumentID     string  `json:"documentId"`
	DocumentTitle  string  `json:"documentTitle"`
	ChunkText      string  `json:"chunkText"`
	PageNumber     int     `json:"pageNumber"`
	SectionHeading string  `json:"sectionHeading,omitempty"`
	Score          float64 `json:"score"`
}

// QueryFilters narrows retrieval to exact metadata matches.
type QueryFilters struct {
	Jurisdiction string `json:"jurisdiction,omitempty"`
	TaxType      string `json:"taxType,omitempty"`
	Version      string `json:"version,omitempty"`
}

// Citation points a generated answer back at a specific indexed chunk.
type Citation struct {
	DocumentTitle  string `json:"documentTitle"`
	PageNumber     int    `json:"pageNumber"`
	SectionHeading string `json:"sectionHeading,omitempty"`
	ChunkID        string `json:"chunkId"`
}

// AskResponse is a grounded, citation-backed answer with the model's
// self-assessed confidence ("high", "medium" or "low").
type AskResponse struct {
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	Confidence string     `json:"confidence"`
}

// IngestResult summarizes one completed ingestion run.
type IngestResult struct {
	DocumentID    string `json:"documentId"`
	ChunksCreated int    `json:"chunksCreated"`
	ChunksIndexed int    `json:"chunksIndexed"`
	ElapsedMs     int64  `json:"elapsedMs"`
}
