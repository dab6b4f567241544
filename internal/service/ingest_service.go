package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
	"lifedash/internal/preprocess"
)

// IngestInput is the DTO for one ingestion request. Immutable once received.
type IngestInput struct {
	FileBytes   []byte
	ContentType string
	Filename    string
	Enhanced    bool
	OnProgress  func(pct int)
}

// IngestService runs the document ingestion pipeline: preprocess, recognize,
// classify, extract.
type IngestService interface {
	Ingest(ctx context.Context, input IngestInput) (*domain.IngestionResult, error)
}

type ingestService struct {
	pre        *preprocess.Preprocessor
	recognizer port.TextRecognizer
	classifier port.DocumentClassifier
	extractor  port.FieldExtractor
	cfg        config.PipelineConfig
}

// NewIngestService creates the pipeline orchestrator. The recognizer is
// expected to be the full engine chain; the orchestrator itself never talks
// to an individual engine.
func NewIngestService(
	pre *preprocess.Preprocessor,
	recognizer port.TextRecognizer,
	classifier port.DocumentClassifier,
	extractor port.FieldExtractor,
	cfg config.PipelineConfig,
) IngestService {
	if cfg.BudgetSecs <= 0 {
		cfg.BudgetSecs = 120
	}
	return &ingestService{
		pre:        pre,
		recognizer: recognizer,
		classifier: classifier,
		extractor:  extractor,
		cfg:        cfg,
	}
}

// Ingest runs the five pipeline stages strictly in sequence. All
// intermediate artifacts live and die within this call; nothing is
// persisted here.
func (s *ingestService) Ingest(ctx context.Context, input IngestInput) (*domain.IngestionResult, error) {
	if len(input.FileBytes) == 0 {
		return nil, domain.ErrNoFileProvided
	}
	if _, ok := domain.AllowedContentTypes[input.ContentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, input.ContentType)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Budget())
	defer cancel()

	// Preprocess: best-effort, never aborts.
	data, compressed := s.pre.Compress(input.FileBytes, input.ContentType)
	if compressed {
		log.Printf("ingestService.Ingest: compressed %s from %d to %d bytes",
			input.Filename, len(input.FileBytes), len(data))
	}

	// Recognize.
	recognition, err := s.recognizer.Recognize(ctx, port.RecognizeInput{
		FileBytes:   data,
		ContentType: input.ContentType,
		OnProgress:  input.OnProgress,
	})
	if err != nil {
		return nil, s.translate(ctx, err)
	}

	// Short-circuit: nothing legible means nothing to classify or extract.
	if strings.TrimSpace(recognition.Text) == "" {
		log.Printf("ingestService.Ingest: %s produced no legible text (engine %s)",
			input.Filename, recognition.EngineUsed)
		return &domain.IngestionResult{
			Text:            recognition.Text,
			DocumentType:    domain.DocTypeUnknown,
			Confidence:      0,
			SuggestedDomain: domain.DomainOther,
			SuggestedAction: "Retake the photo with better lighting and try again.",
			Reasoning:       "No legible text could be recognized in this document.",
			ExtractedData:   map[string]any{},
			Icon:            "📄",
			OCREngine:       recognition.EngineUsed,
			DurationMs:      time.Since(start).Milliseconds(),
		}, nil
	}

	// Classify.
	classification, err := s.classifier.Classify(ctx, recognition.Text)
	if err != nil {
		return nil, s.translate(ctx, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err))
	}

	// Extract: variant selected by the request flag. Enhanced output is
	// flattened so consumers of the standard shape keep working.
	var (
		extracted map[string]any
		enhanced  *domain.EnhancedExtraction
	)
	if input.Enhanced {
		enhanced, err = s.extractor.ExtractEnhanced(ctx, recognition.Text, classification.Type)
		if err == nil {
			extracted = enhanced.Flatten()
		}
	} else {
		extracted, err = s.extractor.Extract(ctx, recognition.Text, classification.Type)
	}
	if err != nil {
		return nil, s.translate(ctx, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err))
	}
	if extracted == nil {
		extracted = map[string]any{}
	}

	return &domain.IngestionResult{
		Text:            recognition.Text,
		DocumentType:    classification.Type,
		Confidence:      classification.Confidence,
		SuggestedDomain: classification.SuggestedDomain,
		SuggestedAction: classification.SuggestedAction,
		Reasoning:       classification.Reasoning,
		ExtractedData:   extracted,
		Icon:            classification.Icon,
		OCREngine:       recognition.EngineUsed,
		DurationMs:      time.Since(start).Milliseconds(),
		Enhanced:        enhanced,
	}, nil
}

// translate converts a stage error into the pipeline's error taxonomy:
// exceeding the overall budget always surfaces as a timeout, whatever stage
// tripped over it.
func (s *ingestService) translate(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", domain.ErrPipelineTimeout, s.cfg.Budget(), err)
	}
	return err
}
