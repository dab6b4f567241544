package recognize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"lifedash/internal/domain"
	"lifedash/internal/port"
)

// Engine pairs an engine identity with its recognizer and an optional
// Prepare hook that transforms the payload just before this engine runs
// (the local fallback receives an OCR-optimized variant, cloud engines the
// original or size-compressed bytes).
type Engine struct {
	ID         domain.EngineID
	Recognizer port.TextRecognizer
	Prepare    func(data []byte, contentType string) []byte
}

// Chain tries OCR engines in a fixed priority order, returning the first
// success. It implements port.TextRecognizer itself so callers need not
// care how many engines sit behind it.
type Chain struct {
	engines []Engine
}

// NewChain creates a Chain over the given ordered engines.
func NewChain(engines []Engine) *Chain {
	return &Chain{engines: engines}
}

// Recognize runs the chain. Empty text from a succeeding engine is a valid
// result, not a failure. When every engine fails, the returned error wraps
// domain.ErrAllEnginesFailed and carries each engine's failure reason
// verbatim so callers can tell exactly why each stage failed.
func (c *Chain) Recognize(ctx context.Context, input port.RecognizeInput) (*domain.RecognitionResult, error) {
	var failures []string

	for _, e := range c.engines {
		attempt := input
		if e.Prepare != nil {
			attempt.FileBytes = e.Prepare(input.FileBytes, input.ContentType)
		}

		result, err := e.Recognizer.Recognize(ctx, attempt)
		if err == nil {
			result.EngineUsed = e.ID
			log.Printf("recognize.Chain: %s succeeded (%d chars, confidence %.2f)",
				e.ID, len(result.Text), result.Confidence)
			return result, nil
		}

		log.Printf("recognize.Chain: %s failed: %v", e.ID, err)
		failures = append(failures, fmt.Sprintf("%s: %v", e.ID, err))

		if ctx.Err() != nil {
			// The budget is gone; trying further engines cannot succeed.
			return nil, fmt.Errorf("%w: %s", domain.ErrAllEnginesFailed, strings.Join(failures, "; "))
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrAllEnginesFailed, strings.Join(failures, "; "))
}
