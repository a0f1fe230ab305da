package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"docuchat/internal/models"
)

const (
	// Redis key prefixes
	chatKeyPrefix     = "chat:"
	chatIndexKey      = "chats:index"
	documentKeyPrefix = "document:"
	chatDocsKeyPrefix = "chat_documents:"
	categoryKeyPrefix = "category:"
)

// RedisChatRepository implements ChatRepository using Redis.
type RedisChatRepository struct {
	client *redis.Client
}

// NewRedisChatRepository creates a new Redis-based chat registry.
func NewRedisChatRepository(client *redis.Client) *RedisChatRepository {
	return &RedisChatRepository{
		client: client,
	}
}

// SaveChat upserts a chat record. Re-saving an existing chat keeps its
// CreatedAt and refreshes LastActivity, so repeated ingests into the same
// conversation accumulate instead of resetting.
func (r *RedisChatRepository) SaveChat(ctx context.Context, chat *models.Chat) error {
	if err := chat.Validate(); err != nil {
		return err
	}

	now := time.Now()
	existing, err := r.GetChat(ctx, chat.Name)
	if err == nil {
		chat.CreatedAt = existing.CreatedAt
	} else {
		chat.CreatedAt = now
	}
	chat.LastActivity = now

	chatJSON, err := json.Marshal(chat)
	if err != nil {
		return NewChatRepositoryError("save_chat", chat.Name, err, "failed to marshal chat")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, chatKeyPrefix+chat.Name, chatJSON, 0)
	pipe.SAdd(ctx, chatIndexKey, chat.Name)

	if _, err := pipe.Exec(ctx); err != nil {
		return NewChatRepositoryError("save_chat", chat.Name, err, "failed to execute transaction")
	}

	return nil
}

// GetChat retrieves a chat by name.
func (r *RedisChatRepository) GetChat(ctx context.Context, name string) (*models.Chat, error) {
	chatJSON, err := r.client.Get(ctx, chatKeyPrefix+name).Result()
	if err == redis.Nil {
		return nil, ChatNotFoundError(name)
	}
	if err != nil {
		return nil, NewChatRepositoryError("get_chat", name, err, "")
	}

	var chat models.Chat
	if err := json.Unmarshal([]byte(chatJSON), &chat); err != nil {
		return nil, NewChatRepositoryError("get_chat", name, err, "failed to unmarshal chat")
	}

	return &chat, nil
}

// ListChats returns all chats, most recently active first.
func (r *RedisChatRepository) ListChats(ctx context.Context) ([]*models.Chat, error) {
	names, err := r.client.SMembers(ctx, chatIndexKey).Result()
	if err != nil {
		return nil, NewChatRepositoryError("list_chats", "", err, "")
	}

	chats := make([]*models.Chat, 0, len(names))
	for _, name := range names {
		chat, err := r.GetChat(ctx, name)
		if err != nil {
			// Index entry without a record means a partially deleted chat.
			continue
		}
		chats = append(chats, chat)
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastActivity.After(chats[j].LastActivity)
	})

	return chats, nil
}

// DeleteChat removes a chat and its document registrations. The document
// records themselves stay reachable through their category index.
func (r *RedisChatRepository) DeleteChat(ctx context.Context, name string) error {
	if _, err := r.GetChat(ctx, name); err != nil {
		return err
	}

	docIDs, err := r.client.SMembers(ctx, chatDocsKeyPrefix+name).Result()
	if err != nil {
		return NewChatRepositoryError("delete_chat", name, err, "")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, chatKeyPrefix+name)
	pipe.SRem(ctx, chatIndexKey, name)
	pipe.Del(ctx, chatDocsKeyPrefix+name)
	for _, docID := range docIDs {
		pipe.Del(ctx, documentKeyPrefix+docID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewChatRepositoryError("delete_chat", name, err, "failed to execute transaction")
	}

	return nil
}

// RegisterDocument stores a document record and indexes it by chat and
// category.
func (r *RedisChatRepository) RegisterDocument(ctx context.Context, doc *models.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return NewChatRepositoryError("register_document", doc.ID, err, "failed to marshal document")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, documentKeyPrefix+doc.ID, docJSON, 0)
	pipe.SAdd(ctx, chatDocsKeyPrefix+doc.Chat, doc.ID)
	if doc.Category != "" {
		pipe.SAdd(ctx, categoryKeyPrefix+string(doc.Category), doc.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return NewChatRepositoryError("register_document", doc.ID, err, "failed to execute transaction")
	}

	return nil
}

// ListDocumentsByChat returns the documents ingested into one conversation.
func (r *RedisChatRepository) ListDocumentsByChat(ctx context.Context, chatName string) ([]*models.Document, error) {
	return r.documentsFromIndex(ctx, "list_documents_by_chat", chatDocsKeyPrefix+chatName)
}

// ListDocumentsByCategory returns the documents classified under a category,
// across all conversations.
func (r *RedisChatRepository) ListDocumentsByCategory(ctx context.Context, category models.Category) ([]*models.Document, error) {
	return r.documentsFromIndex(ctx, "list_documents_by_category", categoryKeyPrefix+string(category))
}

func (r *RedisChatRepository) documentsFromIndex(ctx context.Context, operation, indexKey string) ([]*models.Document, error) {
	docIDs, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, NewChatRepositoryError(operation, indexKey, err, "")
	}

	docs := make([]*models.Document, 0, len(docIDs))
	for _, docID := range docIDs {
		docJSON, err := r.client.Get(ctx, documentKeyPrefix+docID).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, NewChatRepositoryError(operation, docID, err, "")
		}

		var doc models.Document
		if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
			return nil, NewChatRepositoryError(operation, docID, err, "failed to unmarshal document")
		}
		docs = append(docs, &doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})

	return docs, nil
}

// Ping checks the Redis connection.
func (r *RedisChatRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return NewChatRepositoryError("ping", "", err, "")
	}
	return nil
}
