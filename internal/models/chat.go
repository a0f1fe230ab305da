package models

import (
	"fmt"
	"time"
)

// Chat is one conversation. Its name doubles as the vector collection holding
// the conversation's chunks, so re-using a name merges new documents into the
// existing chat rather than starting a fresh one.
type Chat struct {
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
}

// Validate checks the fields the registry requires before writing.
func (c *Chat) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("chat name is required")
	}
	if c.Category != "" && !c.Category.Valid() {
		return fmt.Errorf("invalid category: %s", c.Category)
	}
	return nil
}
