// Package ocr provides text recognition for scanned documents. A PDF is
// rasterized page by page and each page image is run through the OCR engine.
package ocr

import "context"

// Engine recognizes text in a single image.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// PageRenderer rasterizes a PDF into one image per page, in page order.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdf []byte) ([][]byte, error)
}
