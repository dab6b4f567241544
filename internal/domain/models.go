package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RecognitionResult is the outcome of one successful OCR pass.
// Text may be empty: the engine ran fine but found nothing legible.
type RecognitionResult struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	EngineUsed EngineID `json:"engineUsed"`
}

// ClassificationResult is the classifier's verdict on raw document text.
type ClassificationResult struct {
	Type            DocumentType `json:"type"`
	Confidence      float64      `json:"confidence"`
	SuggestedDomain LifeDomain   `json:"suggestedDomain"`
	SuggestedAction string       `json:"suggestedAction"`
	Reasoning       string       `json:"reasoning"`
	Icon            string       `json:"icon"`
}

// ExtractedField is a single enhanced-extraction field with its own
// confidence and, when available, the source text it was read from.
type ExtractedField struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
	SourceSpan string  `json:"sourceSpan,omitempty"`
}

// EnhancedExtraction is the rich extraction variant: a wide field map plus
// cross-cutting signals to support manual review.
type EnhancedExtraction struct {
	Fields          map[string]ExtractedField `json:"fields"`
	DocumentTitle   string                    `json:"documentTitle"`
	Summary         string                    `json:"summary"`
	AllDatesFound   []string                  `json:"allDatesFound"`
	AllNumbersFound []string                  `json:"allNumbersFound"`
	AllNamesFound   []string                  `json:"allNamesFound"`
}

// Flatten derives the standard field->value map from the enhanced fields,
// so consumers of the standard shape keep working in enhanced mode.
func (e *EnhancedExtraction) Flatten() map[string]any {
	flat := make(map[string]any, len(e.Fields))
	for name, f := range e.Fields {
		flat[name] = f.Value
	}
	return flat
}

// IngestionResult is the orchestrator's terminal artifact, the only value
// returned to the caller. Intermediate stage outputs are not retained.
type IngestionResult struct {
	Text            string              `json:"text"`
	DocumentType    DocumentType        `json:"documentType"`
	Confidence      float64             `json:"confidence"`
	SuggestedDomain LifeDomain          `json:"suggestedDomain"`
	SuggestedAction string              `json:"suggestedAction"`
	Reasoning       string              `json:"reasoning"`
	ExtractedData   map[string]any      `json:"extractedData"`
	Icon            string              `json:"icon"`
	OCREngine       EngineID            `json:"ocrEngine"`
	DurationMs      int64               `json:"processingDurationMs"`
	Enhanced        *EnhancedExtraction `json:"enhancedData,omitempty"`
}

// Entry is one row of the generic life-domain record store. Metadata is an
// opaque JSON map; the store does not interpret it.
type Entry struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     uuid.UUID       `db:"owner_id" json:"owner_id"`
	Domain      LifeDomain      `db:"domain" json:"domain"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata"`
	ArchiveKey  string          `db:"archive_key" json:"archive_key,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
