package port

import (
	"context"

	"lifedash/internal/domain"
)

// DocumentClassifier determines a document type and target life domain
// from raw extracted text. It is never invoked with empty text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text string) (*domain.ClassificationResult, error)
}

// FieldExtractor produces structured fields from recognized text. Extract
// returns the standard flat map; ExtractEnhanced returns the wide variant
// with per-field confidence and review signals. Both are best-effort:
// fields the model cannot determine are omitted, never errors.
type FieldExtractor interface {
	Extract(ctx context.Context, text string, docType domain.DocumentType) (map[string]any, error)
	ExtractEnhanced(ctx context.Context, text string, docType domain.DocumentType) (*domain.EnhancedExtraction, error)
}
