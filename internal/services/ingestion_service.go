package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/models"
	"docuchat/internal/repositories"
)

// upsertBatchSize bounds one store request during ingestion.
const upsertBatchSize = 100

// IngestRequest carries one upload through the pipeline.
type IngestRequest struct {
	Filename  string
	Payload   []byte
	MediaType string

	// SeedQuery is the user's first question, used for conversation naming.
	SeedQuery string

	// ChatName pins the target conversation. When empty, a name is derived
	// from the document and seed query.
	ChatName string
}

// IngestResult reports where a document landed.
type IngestResult struct {
	DocumentID string          `json:"document_id"`
	ChatName   string          `json:"chat_name"`
	Category   models.Category `json:"category"`
	ChunkCount int             `json:"chunk_count"`
}

// IngestionService runs the full pipeline: extract, classify, name, ensure
// collection, chunk, embed, store, register.
type IngestionService struct {
	extraction  *ExtractionService
	classifier  *ClassifierService
	naming      *NamingService
	collections *CollectionService
	chunker     *Chunker
	keywords    *KeywordExtractor
	embedder    Embedder
	vectorRepo  repositories.VectorRepository
	chatRepo    repositories.ChatRepository
	logger      *log.Logger
}

// NewIngestionService wires the pipeline stages together.
func NewIngestionService(
	extraction *ExtractionService,
	classifier *ClassifierService,
	naming *NamingService,
	collections *CollectionService,
	chunker *Chunker,
	keywords *KeywordExtractor,
	embedder Embedder,
	vectorRepo repositories.VectorRepository,
	chatRepo repositories.ChatRepository,
	logger *log.Logger,
) *IngestionService {
	return &IngestionService{
		extraction:  extraction,
		classifier:  classifier,
		naming:      naming,
		collections: collections,
		chunker:     chunker,
		keywords:    keywords,
		embedder:    embedder,
		vectorRepo:  vectorRepo,
		chatRepo:    chatRepo,
		logger:      logger,
	}
}

// Ingest processes one upload end to end. The media type is rejected before
// any extraction or model call. When no chat name is supplied and naming
// fails, ingestion aborts with ErrNamingFailed; a failed name never becomes
// a collection name.
func (s *IngestionService) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if !SupportedMediaType(req.MediaType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, req.MediaType)
	}

	text, err := s.extraction.Extract(ctx, req.Payload, req.MediaType)
	if err != nil {
		return nil, err
	}

	category := s.classifier.Classify(ctx, text)

	chatName := req.ChatName
	if chatName == "" {
		chatName, err = s.naming.GenerateName(ctx, text, req.SeedQuery)
		if err != nil {
			return nil, err
		}
	}

	if err := s.collections.Ensure(ctx, chatName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingOrStore, err)
	}

	documentID := uuid.New().String()
	pieces := s.chunker.SplitText(text)

	embeddings, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingOrStore, err)
	}

	chunks := make([]*repositories.Chunk, len(pieces))
	for i, piece := range pieces {
		chunk := &repositories.Chunk{
			PointID:    uuid.New().String(),
			ChunkID:    fmt.Sprintf("%s_chunk_%d", documentID, i),
			DocumentID: documentID,
			Index:      i,
			Text:       piece,
			Embedding:  embeddings[i],
		}

		if kws, err := s.keywords.Extract(piece); err == nil {
			chunk.Keywords = kws
		} else {
			s.logger.Printf("Keyword extraction skipped for chunk %d: %v", i, err)
		}

		chunks[i] = chunk
	}

	for start := 0; start < len(chunks); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.vectorRepo.UpsertChunks(ctx, chatName, chunks[start:end]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingOrStore, err)
		}
	}

	s.registerMetadata(ctx, req, documentID, chatName, category, len(chunks))

	s.logger.Printf("Ingested %s into chat %s (%d chunks, category %s)", req.Filename, chatName, len(chunks), category)

	return &IngestResult{
		DocumentID: documentID,
		ChatName:   chatName,
		Category:   category,
		ChunkCount: len(chunks),
	}, nil
}

// registerMetadata records the chat and document in the registry. Registry
// faults do not fail an ingest whose chunks are already stored.
func (s *IngestionService) registerMetadata(ctx context.Context, req *IngestRequest, documentID, chatName string, category models.Category, chunkCount int) {
	docs, err := s.chatRepo.ListDocumentsByChat(ctx, chatName)
	if err != nil {
		s.logger.Printf("Failed to list chat documents (non-critical): %v", err)
	}

	chat := &models.Chat{
		Name:          chatName,
		Category:      category,
		DocumentCount: len(docs) + 1,
	}
	if err := s.chatRepo.SaveChat(ctx, chat); err != nil {
		s.logger.Printf("Failed to save chat record (non-critical): %v", err)
	}

	doc := &models.Document{
		ID:         documentID,
		Filename:   req.Filename,
		MediaType:  req.MediaType,
		Category:   category,
		Chat:       chatName,
		ChunkCount: chunkCount,
		UploadedAt: time.Now(),
	}
	if err := s.chatRepo.RegisterDocument(ctx, doc); err != nil {
		s.logger.Printf("Failed to register document (non-critical): %v", err)
	}
}
