package services

import "errors"

// Pipeline failure classes. Services wrap underlying causes with %w so both
// the class and the cause survive to the handler layer.
var (
	// ErrUnsupportedMediaType rejects uploads outside the supported set
	// before any extraction work starts.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrExtractionFailed covers rasterization, conversion, and OCR faults.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrNamingFailed means no usable conversation name could be derived
	// and none was supplied. Ingestion aborts rather than invent one.
	ErrNamingFailed = errors.New("conversation naming failed")

	// ErrCollectionNotFound means a query targeted a conversation that was
	// never ingested into.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmbeddingOrStore covers embedding and vector-store faults during
	// ingestion.
	ErrEmbeddingOrStore = errors.New("embedding or storage failed")

	// ErrGenerationFailed covers answer generation faults during query.
	ErrGenerationFailed = errors.New("answer generation failed")
)
