package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"docuchat/internal/models"
	"docuchat/internal/repositories"
	"docuchat/internal/services"
)

// maxUploadBytes bounds one multipart upload (50MB).
const maxUploadBytes = 50 << 20

// DocumentHandler handles HTTP requests for document ingestion and listing.
type DocumentHandler struct {
	ingestion *services.IngestionService
	chatRepo  repositories.ChatRepository
	logger    *log.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(ingestion *services.IngestionService, chatRepo repositories.ChatRepository, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		ingestion: ingestion,
		chatRepo:  chatRepo,
		logger:    logger,
	}
}

// UploadDocument handles document upload requests
// @Summary Upload a document
// @Description Extract, classify, and index an uploaded document into a conversation
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file (PDF, DOC, DOCX, JPEG, PNG)"
// @Param query formData string false "Seed query used for conversation naming"
// @Param chat_name formData string false "Existing conversation to ingest into"
// @Success 200 {object} services.IngestResult
// @Failure 400 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Upload request from %s", r.RemoteAddr)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		h.sendError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		h.logger.Printf("Failed to read upload: %v", err)
		h.sendError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	mediaType := header.Header.Get("Content-Type")

	result, err := h.ingestion.Ingest(r.Context(), &services.IngestRequest{
		Filename:  header.Filename,
		Payload:   payload,
		MediaType: mediaType,
		SeedQuery: r.FormValue("query"),
		ChatName:  r.FormValue("chat_name"),
	})
	if err != nil {
		h.logger.Printf("Ingestion failed for %s: %v", header.Filename, err)
		h.sendError(w, statusForError(err), err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}

// ListDocumentsByCategory handles document listing by category
// @Summary List documents by category
// @Description Get all documents classified under one category
// @Tags documents
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} DocumentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/documents/category/{category} [get]
func (h *DocumentHandler) ListDocumentsByCategory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := models.ParseCategory(vars["category"])

	docs, err := h.chatRepo.ListDocumentsByCategory(r.Context(), category)
	if err != nil {
		h.logger.Printf("Failed to list documents by category: %v", err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendJSON(w, http.StatusOK, DocumentsResponse{
		Documents: docs,
		Total:     len(docs),
	})
}

func (h *DocumentHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *DocumentHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// DocumentsResponse lists document records.
type DocumentsResponse struct {
	Documents []*models.Document `json:"documents"`
	Total     int                `json:"total"`
}
