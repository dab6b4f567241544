package port

import (
	"context"

	"lifedash/internal/domain"
)

// RecognizeInput carries the data an OCR engine needs for one pass.
type RecognizeInput struct {
	FileBytes   []byte
	ContentType string
	// OnProgress, when non-nil, receives coarse progress updates in the
	// range 0..100. Only the local engine reports progress; cloud engines
	// ignore it.
	OnProgress func(pct int)
}

// TextRecognizer is the minimal OCR contract every engine implements.
type TextRecognizer interface {
	Recognize(ctx context.Context, input RecognizeInput) (*domain.RecognitionResult, error)
}
