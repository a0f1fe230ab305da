package services

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

const (
	// keywordInputLimit caps the text handed to the tagger. Chunks are
	// bounded anyway; this guards against pathological inputs.
	keywordInputLimit = 4000

	maxKeywordsPerChunk = 8
)

// KeywordExtractor pulls salient terms out of chunk text. The terms ride
// along in the vector payload so stored chunks can be inspected and filtered
// without re-reading the source document.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a keyword extractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract returns up to maxKeywordsPerChunk noun keywords in order of first
// appearance. Extraction is best effort; ingestion treats a failure here as
// non-critical.
func (k *KeywordExtractor) Extract(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes) > keywordInputLimit {
		text = string(runes[:keywordInputLimit])
	}

	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tag text: %w", err)
	}

	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range doc.Tokens() {
		// NN* covers singular, plural, and proper nouns.
		if !strings.HasPrefix(tok.Tag, "NN") {
			continue
		}
		word := strings.ToLower(strings.Trim(tok.Text, ".,;:!?\"'()"))
		if len(word) < 3 || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == maxKeywordsPerChunk {
			break
		}
	}

	return keywords, nil
}
