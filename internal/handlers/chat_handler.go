package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"docuchat/internal/models"
	"docuchat/internal/repositories"
	"docuchat/internal/services"
)

// ChatHandler handles HTTP requests for conversations.
type ChatHandler struct {
	query    *services.QueryService
	chatRepo repositories.ChatRepository
	logger   *log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(query *services.QueryService, chatRepo repositories.ChatRepository, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		query:    query,
		chatRepo: chatRepo,
		logger:   logger,
	}
}

// QueryRequest is the body for conversational queries.
type QueryRequest struct {
	Query string `json:"query"`
}

// Query handles retrieval-augmented question answering
// @Summary Query a conversation
// @Description Answer a question using the documents ingested into one conversation
// @Tags chats
// @Accept json
// @Produce json
// @Param name path string true "Chat name"
// @Param request body QueryRequest true "Query"
// @Success 200 {object} services.Answer
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/chats/{name}/query [post]
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chatName := vars["name"]

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.sendError(w, http.StatusBadRequest, "Query is required")
		return
	}

	h.logger.Printf("Query in chat %s", chatName)

	answer, err := h.query.Query(r.Context(), chatName, req.Query)
	if err != nil {
		h.logger.Printf("Query failed in chat %s: %v", chatName, err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, answer)
}

// ListChats handles conversation listing
// @Summary List conversations
// @Description Get all conversations, most recently active first
// @Tags chats
// @Produce json
// @Success 200 {object} ChatsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats [get]
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatRepo.ListChats(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list chats: %v", err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, ChatsResponse{
		Chats: chats,
		Total: len(chats),
	})
}

// ListChatDocuments handles listing the documents of one conversation
// @Summary List conversation documents
// @Description Get the documents ingested into one conversation
// @Tags chats
// @Produce json
// @Param name path string true "Chat name"
// @Success 200 {object} DocumentsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chats/{name}/documents [get]
func (h *ChatHandler) ListChatDocuments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chatName := vars["name"]

	docs, err := h.chatRepo.ListDocumentsByChat(r.Context(), chatName)
	if err != nil {
		h.logger.Printf("Failed to list documents for chat %s: %v", chatName, err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, DocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

func (h *ChatHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *ChatHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// ChatsResponse lists conversation records.
type ChatsResponse struct {
	Chats []*models.Chat `json:"chats"`
	Total int            `json:"total"`
}
