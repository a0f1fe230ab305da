package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"docuchat/internal/db"
)

const (
	// Embedding dimensionality of all-MiniLM-L6-v2. Every collection is
	// created with this size and cosine distance.
	embeddingDimension = 384
	distanceMetric     = "Cosine"
)

// QdrantVectorRepository implements VectorRepository backed by Qdrant.
type QdrantVectorRepository struct {
	client *db.QdrantClient
	logger *log.Logger
}

// NewQdrantVectorRepository creates a repository over an existing client.
func NewQdrantVectorRepository(client *db.QdrantClient, logger *log.Logger) *QdrantVectorRepository {
	return &QdrantVectorRepository{
		client: client,
		logger: logger,
	}
}

// CreateCollection creates a collection with the fixed embedding dimension.
// A collection that already exists is treated as success so concurrent
// creates for the same conversation converge on one collection.
func (r *QdrantVectorRepository) CreateCollection(ctx context.Context, name string) error {
	err := r.client.CreateCollection(ctx, name, embeddingDimension, distanceMetric)
	if err != nil {
		if errors.Is(err, db.ErrCollectionExists) {
			r.logger.Printf("Collection %s already exists, reusing", name)
			return nil
		}
		return NewVectorRepositoryError("create_collection", err, "")
	}

	r.logger.Printf("Created collection: %s", name)
	return nil
}

// DeleteCollection removes a collection and all stored chunks.
func (r *QdrantVectorRepository) DeleteCollection(ctx context.Context, name string) error {
	err := r.client.DeleteCollection(ctx, name)
	if err != nil {
		if errors.Is(err, db.ErrCollectionNotFound) {
			return CollectionNotFoundError(name)
		}
		return NewVectorRepositoryError("delete_collection", err, "")
	}

	r.logger.Printf("Deleted collection: %s", name)
	return nil
}

// CollectionExists checks whether a collection is present in the store.
func (r *QdrantVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := r.client.CollectionExists(ctx, name)
	if err != nil {
		return false, NewVectorRepositoryError("collection_exists", err, "")
	}
	return exists, nil
}

// ListCollections returns the names of all collections.
func (r *QdrantVectorRepository) ListCollections(ctx context.Context) ([]string, error) {
	names, err := r.client.ListCollections(ctx)
	if err != nil {
		return nil, NewVectorRepositoryError("list_collections", err, "")
	}
	return names, nil
}

// UpsertChunks stores chunks as points. The payload carries the chunk text
// plus identifiers so search hits can be traced back to their document.
func (r *QdrantVectorRepository) UpsertChunks(ctx context.Context, collectionName string, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]db.Point, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Embedding) != embeddingDimension {
			return NewVectorRepositoryError(
				"upsert_chunks",
				nil,
				fmt.Sprintf("chunk %s has embedding dimension %d, want %d", chunk.ChunkID, len(chunk.Embedding), embeddingDimension),
			)
		}

		payload := map[string]interface{}{
			"chunk_id":    chunk.ChunkID,
			"document_id": chunk.DocumentID,
			"chunk_index": chunk.Index,
			"text":        chunk.Text,
		}
		if len(chunk.Keywords) > 0 {
			payload["keywords"] = chunk.Keywords
		}

		points[i] = db.Point{
			ID:      chunk.PointID,
			Vector:  chunk.Embedding,
			Payload: payload,
		}
	}

	if err := r.client.UpsertPoints(ctx, collectionName, points); err != nil {
		return NewVectorRepositoryError("upsert_chunks", err, "")
	}

	r.logger.Printf("Upserted %d chunks into collection %s", len(chunks), collectionName)
	return nil
}

// Search returns the topK most similar chunks, best score first.
func (r *QdrantVectorRepository) Search(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error) {
	hits, err := r.client.SearchPoints(ctx, collectionName, queryEmbedding, topK)
	if err != nil {
		return nil, NewVectorRepositoryError("search", err, "")
	}

	results := make([]*SearchResult, 0, len(hits))
	for _, hit := range hits {
		result := &SearchResult{Score: hit.Score}
		if v, ok := hit.Payload["chunk_id"].(string); ok {
			result.ChunkID = v
		}
		if v, ok := hit.Payload["document_id"].(string); ok {
			result.DocumentID = v
		}
		if v, ok := hit.Payload["chunk_index"].(float64); ok {
			result.Index = int(v)
		}
		if v, ok := hit.Payload["text"].(string); ok {
			result.Text = v
		}
		results = append(results, result)
	}

	return results, nil
}

// CountChunks returns the exact number of chunks stored in a collection.
func (r *QdrantVectorRepository) CountChunks(ctx context.Context, collectionName string) (int, error) {
	count, err := r.client.CountPoints(ctx, collectionName)
	if err != nil {
		return 0, NewVectorRepositoryError("count_chunks", err, "")
	}
	return count, nil
}

// Ping checks store availability.
func (r *QdrantVectorRepository) Ping(ctx context.Context) error {
	if err := r.client.Ready(ctx); err != nil {
		return NewVectorRepositoryError("ping", err, "")
	}
	return nil
}

// Close releases HTTP connections held by the client.
func (r *QdrantVectorRepository) Close() error {
	r.client.Close()
	return nil
}
