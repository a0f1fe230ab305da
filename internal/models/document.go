package models

import (
	"fmt"
	"time"
)

// Document is the registry entry for one ingested file. The raw bytes are
// never persisted by this layer; only the metadata the request layer needs
// back after the pipeline has run.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	MediaType  string    `json:"media_type"`
	Category   Category  `json:"category"`
	Chat       string    `json:"chat"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Validate checks the fields the registry requires before writing.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Chat == "" {
		return fmt.Errorf("document chat is required")
	}
	if d.Category != "" && !d.Category.Valid() {
		return fmt.Errorf("invalid category: %s", d.Category)
	}
	return nil
}
