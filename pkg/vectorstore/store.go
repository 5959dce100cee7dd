package vectorstore

import "context"

// Store is the embedding index consumed by the retrieval engine.
// Documents are append-only apart from metadata edits and explicit deletes.
type Store interface {
	// Add writes documents with their precomputed vectors and returns the
	// assigned IDs. texts, vectors and metadata must have equal length.
	Add(ctx context.Context, texts []string, vectors [][]float32, metadata []Metadata) ([]string, error)

	// Search returns up to limit nearest neighbors of the query vector,
	// closest first.
	Search(ctx context.Context, queryVector []float32, limit int, filter *Filter) ([]SearchHit, error)

	// GetAll returns every document matching the filter in insertion order.
	GetAll(ctx context.Context, filter *Filter) ([]Document, error)

	// Delete removes documents by ID. Missing IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// UpdateMetadata replaces the metadata of a single document.
	UpdateMetadata(ctx context.Context, id string, metadata Metadata) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	Close() error
}
