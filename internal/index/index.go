// Package index defines the vector similarity index the text retrieval agent
// queries, plus its Qdrant and in-memory implementations. The index stores
// text-block embeddings written by the ingestion pipeline; the QA core only
// queries it.
package index

import "context"

// Metadata cross-references a hit back to its originating text block.
type Metadata struct {
	// DocumentID is the owning document's id in the document store.
	DocumentID int64 `json:"document_id"`
	// PageNumber is the page the block was extracted from.
	PageNumber int `json:"page_number"`
	// BlockType is the layout role recorded at ingestion (paragraph, heading, ...).
	BlockType string `json:"block_type"`
}

// Hit is one nearest-neighbour result.
type Hit struct {
	// Content is the stored text the embedding was computed from.
	Content string
	// Metadata cross-references the originating text block.
	Metadata Metadata
	// Distance is the cosine distance to the query vector, in [0, 2].
	// Similarity is 1 - Distance.
	Distance float32
}

// Point is an embedding with its content and metadata, as written at
// ingestion time.
type Point struct {
	// Key is the unique vector key recorded on the text block.
	Key string
	// Vector is the embedding of Content.
	Vector []float32
	// Content is the embedded text.
	Content string
	// Metadata cross-references the originating text block.
	Metadata Metadata
}

// Index is the similarity index contract.
// Implementations must be safe to call from multiple goroutines.
type Index interface {
	// Query returns the k nearest stored points to the given vector,
	// ordered nearest-first.
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)
	// Upsert stores or updates a batch of points. Write path for the
	// ingestion pipeline and tests; the QA core never calls it.
	Upsert(ctx context.Context, points []Point) error
	// Close releases any resources held by the index.
	Close() error
}
