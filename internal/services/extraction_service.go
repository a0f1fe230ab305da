package services

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"docuchat/internal/convert"
	"docuchat/internal/ocr"
)

// Supported upload media types.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDoc  = "application/msword"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
)

// SupportedMediaType reports whether uploads of this type are accepted.
func SupportedMediaType(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeDoc, MediaTypeDocx, MediaTypeJPEG, MediaTypePNG:
		return true
	}
	return false
}

// ExtractionService turns uploaded documents into plain text. PDFs are
// rasterized and recognized page by page; word-processor files are converted
// to PDF first; images go straight to recognition.
type ExtractionService struct {
	renderer  ocr.PageRenderer
	engine    ocr.Engine
	converter convert.Converter
	logger    *log.Logger

	// maxParallelPages bounds concurrent page recognition.
	maxParallelPages int
}

// NewExtractionService creates an extraction service.
func NewExtractionService(renderer ocr.PageRenderer, engine ocr.Engine, converter convert.Converter, logger *log.Logger) *ExtractionService {
	return &ExtractionService{
		renderer:         renderer,
		engine:           engine,
		converter:        converter,
		logger:           logger,
		maxParallelPages: runtime.NumCPU(),
	}
}

// Extract returns the document's full text. The media type is checked before
// any conversion or recognition work starts.
func (s *ExtractionService) Extract(ctx context.Context, payload []byte, mediaType string) (string, error) {
	switch mediaType {
	case MediaTypePDF:
		return s.extractPDF(ctx, payload)
	case MediaTypeDoc:
		return s.extractWord(ctx, payload, "doc")
	case MediaTypeDocx:
		return s.extractWord(ctx, payload, "docx")
	case MediaTypeJPEG, MediaTypePNG:
		return s.extractImage(ctx, payload)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// extractPDF rasterizes every page and recognizes them concurrently. Page
// order is preserved in the joined output; any page failing recognition
// fails the whole document.
func (s *ExtractionService) extractPDF(ctx context.Context, payload []byte) (string, error) {
	pages, err := s.renderer.RenderPages(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	s.logger.Printf("Recognizing %d pages", len(pages))

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallelPages)

	for i, page := range pages {
		g.Go(func() error {
			text, err := s.engine.Recognize(gctx, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	return strings.Join(texts, "\n"), nil
}

// extractWord converts the document to PDF and runs the PDF path.
func (s *ExtractionService) extractWord(ctx context.Context, payload []byte, ext string) (string, error) {
	pdf, err := s.converter.ToPDF(ctx, payload, ext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return s.extractPDF(ctx, pdf)
}

// extractImage recognizes a single uploaded image.
func (s *ExtractionService) extractImage(ctx context.Context, payload []byte) (string, error) {
	text, err := s.engine.Recognize(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return text, nil
}
