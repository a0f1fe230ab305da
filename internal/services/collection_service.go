package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"docuchat/internal/repositories"
)

// CollectionService manages the lifecycle of per-conversation vector
// collections. Creation is serialized per name, so two concurrent ingests
// into the same conversation issue at most one create and both proceed.
type CollectionService struct {
	vectorRepo repositories.VectorRepository
	logger     *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCollectionService creates a new collection service.
func NewCollectionService(vectorRepo repositories.VectorRepository, logger *log.Logger) *CollectionService {
	return &CollectionService{
		vectorRepo: vectorRepo,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// nameLock returns the mutex guarding one collection name.
func (s *CollectionService) nameLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// Ensure makes the collection exist, creating it when missing. Ingesting a
// second document under an existing name merges into that collection.
func (s *CollectionService) Ensure(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return fmt.Errorf("invalid collection name: %w", err)
	}

	lock := s.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.vectorRepo.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	// The repository treats a create that races with another writer as
	// success, so losing the window between check and create is harmless.
	if err := s.vectorRepo.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	s.logger.Printf("Collection ready: %s", name)
	return nil
}

// Exists checks if a collection exists.
func (s *CollectionService) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateCollectionName(name); err != nil {
		return false, fmt.Errorf("invalid collection name: %w", err)
	}

	exists, err := s.vectorRepo.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// List lists all collections.
func (s *CollectionService) List(ctx context.Context) ([]string, error) {
	collections, err := s.vectorRepo.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// Delete removes a collection and its stored chunks. Wraps
// ErrCollectionNotFound when the collection does not exist.
func (s *CollectionService) Delete(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return fmt.Errorf("invalid collection name: %w", err)
	}

	lock := s.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.vectorRepo.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	if err := s.vectorRepo.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	s.logger.Printf("Collection deleted: %s", name)
	return nil
}

// CountChunks returns the number of chunks stored in a collection.
func (s *CollectionService) CountChunks(ctx context.Context, name string) (int, error) {
	if err := validateCollectionName(name); err != nil {
		return 0, fmt.Errorf("invalid collection name: %w", err)
	}

	count, err := s.vectorRepo.CountChunks(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// validateCollectionName rejects names that cannot serve as store
// identifiers. Sanitized chat names always pass.
func validateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}

	if len(name) > 64 {
		return fmt.Errorf("collection name must be at most 64 characters")
	}

	for _, ch := range name {
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '-' || ch == '_') {
			return fmt.Errorf("collection name contains invalid character: %c", ch)
		}
	}

	return nil
}
