package handlers

import (
	"errors"
	"net/http"

	"docuchat/internal/services"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SuccessResponse is the JSON body for requests with no payload to return.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusForError maps pipeline failure classes onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNamingFailed),
		errors.Is(err, services.ErrEmbeddingOrStore),
		errors.Is(err, services.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
