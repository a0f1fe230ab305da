package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docuchat/internal/repositories"
)

const (
	DefaultTopK = 4

	answerMaxTokens   = 512
	answerTemperature = 0.3

	// RefusalAnswer is the fixed sentence the model is instructed to return
	// when the retrieved context cannot answer the query. It is matched
	// verbatim to flag out-of-context answers.
	RefusalAnswer = "Your query does not match the context!"
)

const answerPrompt = "You are a knowledgeable assistant. Your responses should only be based on " +
	"the context below. If the query does not match the context, respond with " +
	"'" + RefusalAnswer + "'.\n\n" +
	"Context:\n%s\n\n" +
	"User Query: %s\n\n" +
	"Answer:"

// Answer is the outcome of one retrieval-augmented query.
type Answer struct {
	Text         string                       `json:"text"`
	OutOfContext bool                         `json:"out_of_context"`
	Sources      []*repositories.SearchResult `json:"sources,omitempty"`
}

// QueryService answers questions against one conversation's stored chunks.
type QueryService struct {
	collections *CollectionService
	embedder    Embedder
	generator   TextGenerator
	vectorRepo  repositories.VectorRepository
	logger      *log.Logger
	topK        int
}

// NewQueryService creates a query service. TopK falls back to DefaultTopK
// when zero.
func NewQueryService(
	collections *CollectionService,
	embedder Embedder,
	generator TextGenerator,
	vectorRepo repositories.VectorRepository,
	logger *log.Logger,
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		collections: collections,
		embedder:    embedder,
		generator:   generator,
		vectorRepo:  vectorRepo,
		logger:      logger,
		topK:        topK,
	}
}

// Query retrieves the most relevant chunks for the question and generates a
// grounded answer. Wraps ErrCollectionNotFound when the conversation has no
// collection, ErrEmbeddingOrStore when embedding or retrieval fails, and
// ErrGenerationFailed when the model call fails. Empty
// retrieval short-circuits to the refusal answer without a model call.
func (s *QueryService) Query(ctx context.Context, chatName, queryText string) (*Answer, error) {
	exists, err := s.collections.Exists(ctx, chatName)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, chatName)
	}

	embedding, err := s.embedder.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingOrStore, err)
	}

	results, err := s.vectorRepo.Search(ctx, chatName, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingOrStore, err)
	}

	if len(results) == 0 {
		s.logger.Printf("No context retrieved for chat %s", chatName)
		return &Answer{Text: RefusalAnswer, OutOfContext: true}, nil
	}

	contexts := make([]string, len(results))
	for i, result := range results {
		contexts[i] = result.Text
	}
	contextBlock := strings.Join(contexts, "\n\n")

	prompt := fmt.Sprintf(answerPrompt, contextBlock, queryText)

	reply, err := s.generator.Generate(ctx, prompt, answerMaxTokens, answerTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := strings.TrimSpace(reply)
	return &Answer{
		Text:         text,
		OutOfContext: text == RefusalAnswer,
		Sources:      results,
	}, nil
}
