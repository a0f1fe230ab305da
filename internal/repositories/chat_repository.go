package repositories

import (
	"context"

	"docuchat/internal/models"
)

// ChatRepository defines the registry of conversations and the documents
// ingested into them. The vector store holds the chunks; this registry
// holds the metadata the API surfaces for listing and browsing.
type ChatRepository interface {
	// Chat Management
	SaveChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, name string) (*models.Chat, error)
	ListChats(ctx context.Context) ([]*models.Chat, error)
	DeleteChat(ctx context.Context, name string) error

	// Document Registry
	RegisterDocument(ctx context.Context, doc *models.Document) error
	ListDocumentsByChat(ctx context.Context, chatName string) ([]*models.Document, error)
	ListDocumentsByCategory(ctx context.Context, category models.Category) ([]*models.Document, error)

	// Health
	Ping(ctx context.Context) error
}

// ChatRepositoryError represents errors from the chat registry
type ChatRepositoryError struct {
	Operation string
	Key       string
	Err       error
	Message   string
}

func (e *ChatRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + " " + e.Key + ": " + e.Err.Error()
	}
	return e.Operation + " " + e.Key + ": unknown error"
}

func (e *ChatRepositoryError) Unwrap() error {
	return e.Err
}

// NewChatRepositoryError creates a new chat repository error
func NewChatRepositoryError(operation, key string, err error, message string) *ChatRepositoryError {
	return &ChatRepositoryError{
		Operation: operation,
		Key:       key,
		Err:       err,
		Message:   message,
	}
}

// ChatNotFoundError signals a lookup for a chat that was never registered.
func ChatNotFoundError(name string) error {
	return NewChatRepositoryError(
		"get_chat",
		name,
		nil,
		"chat not found: "+name,
	)
}
