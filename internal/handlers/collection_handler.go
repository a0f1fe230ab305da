package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"docuchat/internal/repositories"
	"docuchat/internal/services"
)

// CollectionHandler handles HTTP requests for vector collection operations.
type CollectionHandler struct {
	collections *services.CollectionService
	chatRepo    repositories.ChatRepository
	logger      *log.Logger
}

// NewCollectionHandler creates a new collection handler.
func NewCollectionHandler(collections *services.CollectionService, chatRepo repositories.ChatRepository, logger *log.Logger) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		chatRepo:    chatRepo,
		logger:      logger,
	}
}

// ListCollections handles requests to list all collections
// @Summary List collections
// @Description Get the names of all vector collections
// @Tags collections
// @Produce json
// @Success 200 {object} CollectionsResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/collections [get]
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.List(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list collections: %v", err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, CollectionsResponse{
		Collections: collections,
		Total:       len(collections),
	})
}

// GetCollectionStats handles collection statistics requests
// @Summary Get collection statistics
// @Description Get the stored chunk count for a collection
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} CollectionStatsResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/collections/{name}/stats [get]
func (h *CollectionHandler) GetCollectionStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	exists, err := h.collections.Exists(r.Context(), name)
	if err != nil {
		h.logger.Printf("Failed to check collection %s: %v", name, err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		h.sendError(w, http.StatusNotFound, "collection not found: "+name)
		return
	}

	count, err := h.collections.CountChunks(r.Context(), name)
	if err != nil {
		h.logger.Printf("Failed to count chunks in %s: %v", name, err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, CollectionStatsResponse{
		Name:       name,
		ChunkCount: count,
	})
}

// DeleteCollection handles collection deletion requests
// @Summary Delete collection
// @Description Delete a collection, its stored chunks, and its chat registration
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/collections/{name} [delete]
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	h.logger.Printf("Delete collection: %s", name)

	if err := h.collections.Delete(r.Context(), name); err != nil {
		h.logger.Printf("Failed to delete collection %s: %v", name, err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	// Registry cleanup is best effort; the chunks are already gone.
	if err := h.chatRepo.DeleteChat(r.Context(), name); err != nil {
		h.logger.Printf("Failed to delete chat record %s (non-critical): %v", name, err)
	}

	h.sendJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Collection deleted successfully",
	})
}

func (h *CollectionHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *CollectionHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// Response types

type CollectionsResponse struct {
	Collections []string `json:"collections"`
	Total       int      `json:"total"`
}

type CollectionStatsResponse struct {
	Name       string `json:"name"`
	ChunkCount int    `json:"chunk_count"`
}
