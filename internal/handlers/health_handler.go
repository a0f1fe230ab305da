package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"docuchat/internal/repositories"
)

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	vectorRepo repositories.VectorRepository
	chatRepo   repositories.ChatRepository
	logger     *log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(vectorRepo repositories.VectorRepository, chatRepo repositories.ChatRepository, logger *log.Logger) *HealthHandler {
	return &HealthHandler{
		vectorRepo: vectorRepo,
		chatRepo:   chatRepo,
		logger:     logger,
	}
}

// HealthResponse reports the state of the service and its backends.
type HealthResponse struct {
	Status      string `json:"status"`
	VectorStore string `json:"vector_store"`
	Registry    string `json:"registry"`
}

// Health handles liveness and dependency checks
// @Summary Health check
// @Description Report service health and backend connectivity
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", VectorStore: "ok", Registry: "ok"}
	status := http.StatusOK

	if err := h.vectorRepo.Ping(r.Context()); err != nil {
		h.logger.Printf("Vector store unreachable: %v", err)
		resp.VectorStore = "unreachable"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	if err := h.chatRepo.Ping(r.Context()); err != nil {
		h.logger.Printf("Registry unreachable: %v", err)
		resp.Registry = "unreachable"
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}
