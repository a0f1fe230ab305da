package repositories

import (
	"context"
)

// VectorRepository defines the interface for vector store operations.
// It abstracts the Qdrant backend so services can be tested against fakes
// and the store can be swapped without touching the pipeline.
type VectorRepository interface {
	// Collection Management
	CreateCollection(ctx context.Context, name string) error
	DeleteCollection(ctx context.Context, name string) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	ListCollections(ctx context.Context) ([]string, error)

	// Chunk Operations
	UpsertChunks(ctx context.Context, collectionName string, chunks []*Chunk) error
	Search(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error)
	CountChunks(ctx context.Context, collectionName string) (int, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// Chunk represents a text chunk with its embedding, ready for storage.
// PointID must be a UUID. ChunkID is the human-readable ordered identifier
// ("<documentID>_chunk_<index>") carried in the payload.
type Chunk struct {
	PointID    string    `json:"point_id"`
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	Keywords   []string  `json:"keywords,omitempty"`
}

// SearchResult represents a single hit from similarity search.
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"` // Similarity score, higher is better
}

// VectorRepositoryError represents errors from the vector repository
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// CollectionNotFoundError signals an operation against a missing collection.
func CollectionNotFoundError(name string) error {
	return NewVectorRepositoryError(
		"get_collection",
		nil,
		"collection not found: "+name,
	)
}
