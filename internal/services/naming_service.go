package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const (
	namingMaxTokens   = 10
	namingTemperature = 0.2

	// maxChatNameLength bounds sanitized names so they stay usable as
	// collection names and registry keys.
	maxChatNameLength = 64
)

const namingPrompt = "Based on the document content and user query below, generate a concise cool chat name that is 1-3 words long. " +
	"Please do not include any explanations, alternatives, or additional responses. Just provide the chat name.\n\n" +
	"Document Content: %s\n" +
	"User Query: %s\n\n" +
	"Chat Name:"

// NamingService derives a conversation name from document content and the
// user's seed query. The name doubles as the vector collection name, so a
// failure here is a typed error the caller must handle; the service never
// substitutes a fabricated name.
type NamingService struct {
	generator TextGenerator
	logger    *log.Logger
}

// NewNamingService creates a naming service.
func NewNamingService(generator TextGenerator, logger *log.Logger) *NamingService {
	return &NamingService{
		generator: generator,
		logger:    logger,
	}
}

// GenerateName returns a sanitized conversation name. Wraps ErrNamingFailed
// on generation failure or when the reply sanitizes to nothing.
func (s *NamingService) GenerateName(ctx context.Context, documentContent, userQuery string) (string, error) {
	prompt := fmt.Sprintf(namingPrompt, documentContent, userQuery)

	reply, err := s.generator.Generate(ctx, prompt, namingMaxTokens, namingTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNamingFailed, err)
	}

	name, err := sanitizeChatName(reply)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNamingFailed, err)
	}

	s.logger.Printf("Generated chat name: %s", name)
	return name, nil
}

// sanitizeChatName normalizes a model reply into a name safe for use as a
// collection identifier: quotes stripped, whitespace runs collapsed to a
// single hyphen, only letters, digits, hyphen, and underscore kept.
func sanitizeChatName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"'`)
	name = strings.Join(strings.Fields(name), "-")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name = b.String()

	// Stripped characters can leave hyphen runs behind.
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	if len(name) > maxChatNameLength {
		name = name[:maxChatNameLength]
	}
	name = strings.Trim(name, "-_")

	if name == "" {
		return "", fmt.Errorf("reply %q yields no usable name", raw)
	}
	return name, nil
}
