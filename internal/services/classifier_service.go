package services

import (
	"context"
	"fmt"
	"log"

	"docuchat/internal/models"
)

const (
	classificationMaxTokens   = 10
	classificationTemperature = 0.2
)

// classificationPrompt pins the model to the closed category set. The reply
// is still validated; anything outside the set collapses to Others.
const classificationPrompt = "You are a document classifier. Classify the following document into one of these exact categories: " +
	"Medical, Insurance, Finance, Utility, Legal, Hotel, Retail, Others. " +
	"Respond ONLY with the category name. No extra text, punctuation, or explanation.\n\n" +
	"%s\n\n" +
	"Category:"

// ClassifierService assigns a category to document text.
type ClassifierService struct {
	generator TextGenerator
	logger    *log.Logger
}

// NewClassifierService creates a classifier service.
func NewClassifierService(generator TextGenerator, logger *log.Logger) *ClassifierService {
	return &ClassifierService{
		generator: generator,
		logger:    logger,
	}
}

// Classify returns the document's category. Classification never fails the
// pipeline: a generation error or unrecognized reply degrades to
// CategoryOthers and is logged.
func (s *ClassifierService) Classify(ctx context.Context, documentText string) models.Category {
	prompt := fmt.Sprintf(classificationPrompt, documentText)

	reply, err := s.generator.Generate(ctx, prompt, classificationMaxTokens, classificationTemperature)
	if err != nil {
		s.logger.Printf("Classification degraded to %s: %v", models.CategoryOthers, err)
		return models.CategoryOthers
	}

	return models.ParseCategory(reply)
}
