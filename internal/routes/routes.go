package routes

import (
	"github.com/gorilla/mux"

	"docuchat/internal/handlers"
)

// Handlers groups everything RegisterRoutes wires up.
type Handlers struct {
	Health     *handlers.HealthHandler
	Document   *handlers.DocumentHandler
	Chat       *handlers.ChatHandler
	Collection *handlers.CollectionHandler
}

// RegisterRoutes sets up all application routes.
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health
	router.HandleFunc("/health", h.Health.Health).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Documents
	api.HandleFunc("/documents", h.Document.UploadDocument).Methods("POST")
	api.HandleFunc("/documents/category/{category}", h.Document.ListDocumentsByCategory).Methods("GET")

	// Chats
	api.HandleFunc("/chats", h.Chat.ListChats).Methods("GET")
	api.HandleFunc("/chats/{name}/documents", h.Chat.ListChatDocuments).Methods("GET")
	api.HandleFunc("/chats/{name}/query", h.Chat.Query).Methods("POST")

	// Collections
	api.HandleFunc("/collections", h.Collection.ListCollections).Methods("GET")
	api.HandleFunc("/collections/{name}/stats", h.Collection.GetCollectionStats).Methods("GET")
	api.HandleFunc("/collections/{name}", h.Collection.DeleteCollection).Methods("DELETE")
}
