package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/port"
	"lifedash/internal/preprocess"
	"lifedash/internal/recognize"
	"lifedash/internal/service"
	"lifedash/mocks"
)

func newPipeline(rec port.TextRecognizer, cls *mocks.MockDocumentClassifier, ext *mocks.MockFieldExtractor) service.IngestService {
	return service.NewIngestService(
		preprocess.New(config.PreprocessConfig{}),
		rec, cls, ext,
		config.PipelineConfig{BudgetSecs: 120},
	)
}

func classification(docType domain.DocumentType, dom domain.LifeDomain) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		Type:            docType,
		Confidence:      0.9,
		SuggestedDomain: dom,
		SuggestedAction: "File it.",
		Reasoning:       "Looks like one.",
		Icon:            "🧾",
	}
}

func noisyJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func TestIngest_NoFile(t *testing.T) {
	svc := newPipeline(new(mocks.MockTextRecognizer), new(mocks.MockDocumentClassifier), new(mocks.MockFieldExtractor))

	_, err := svc.Ingest(context.Background(), service.IngestInput{ContentType: "image/png"})

	assert.ErrorIs(t, err, domain.ErrNoFileProvided)
}

func TestIngest_UnsupportedMediaType(t *testing.T) {
	svc := newPipeline(new(mocks.MockTextRecognizer), new(mocks.MockDocumentClassifier), new(mocks.MockFieldExtractor))

	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("GIF89a"),
		ContentType: "image/gif",
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedMediaType)
}

func TestIngest_EmptyTextShortCircuits(t *testing.T) {
	rec := new(mocks.MockTextRecognizer)
	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)

	rec.On("Recognize", mock.Anything, mock.Anything).Return(
		&domain.RecognitionResult{Text: "   \n ", Confidence: 0.2, EngineUsed: domain.EngineGoogleVision}, nil)

	svc := newPipeline(rec, cls, ext)
	result, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("blurry"),
		ContentType: "image/jpeg",
		Filename:    "blank.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocTypeUnknown, result.DocumentType)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, domain.DomainOther, result.SuggestedDomain)
	assert.Empty(t, result.ExtractedData)
	assert.Equal(t, domain.EngineGoogleVision, result.OCREngine)
	assert.NotEmpty(t, result.Reasoning)
	cls.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
	ext.AssertNotCalled(t, "ExtractEnhanced", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_StandardFlow(t *testing.T) {
	rec := new(mocks.MockTextRecognizer)
	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)

	rec.On("Recognize", mock.Anything, mock.Anything).Return(
		&domain.RecognitionResult{Text: "Total: $42.10", Confidence: 0.95, EngineUsed: domain.EngineGoogleVision}, nil)
	cls.On("Classify", mock.Anything, "Total: $42.10").Return(classification(domain.DocTypeReceipt, domain.DomainFinance), nil)
	ext.On("Extract", mock.Anything, "Total: $42.10", domain.DocTypeReceipt).Return(map[string]any{"amount": "42.10"}, nil)

	svc := newPipeline(rec, cls, ext)
	result, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("small receipt image"),
		ContentType: "image/jpeg",
		Filename:    "receipt.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocTypeReceipt, result.DocumentType)
	assert.Equal(t, domain.DomainFinance, result.SuggestedDomain)
	assert.Equal(t, "42.10", result.ExtractedData["amount"])
	assert.Equal(t, domain.EngineGoogleVision, result.OCREngine)
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))
	assert.Nil(t, result.Enhanced)
	ext.AssertNotCalled(t, "ExtractEnhanced", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_EnhancedFlowFlattens(t *testing.T) {
	rec := new(mocks.MockTextRecognizer)
	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)

	rec.On("Recognize", mock.Anything, mock.Anything).Return(
		&domain.RecognitionResult{Text: "bill text", Confidence: 0.9, EngineUsed: domain.EngineAzureVision}, nil)
	cls.On("Classify", mock.Anything, "bill text").Return(classification(domain.DocTypeBill, domain.DomainHome), nil)

	enhanced := &domain.EnhancedExtraction{
		Fields: map[string]domain.ExtractedField{
			"provider":   {Value: "City Power", Confidence: 0.9},
			"amount_due": {Value: "120.00", Confidence: 0.85},
			"due_date":   {Value: "2024-04-01", Confidence: 0.8},
		},
		DocumentTitle: "City Power bill",
	}
	ext.On("ExtractEnhanced", mock.Anything, "bill text", domain.DocTypeBill).Return(enhanced, nil)

	svc := newPipeline(rec, cls, ext)
	result, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("bill image"),
		ContentType: "image/png",
		Enhanced:    true,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Enhanced)
	// Flattened map mirrors the enhanced field set exactly.
	require.Len(t, result.ExtractedData, len(enhanced.Fields))
	for name, field := range enhanced.Fields {
		assert.Equal(t, field.Value, result.ExtractedData[name])
	}
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_PreprocessingFailureNeverAborts(t *testing.T) {
	// Corrupt image bytes above the compression threshold: Compress must
	// pass the original through and recognition must still run.
	corrupt := bytes.Repeat([]byte{0xab}, 4096)

	rec := new(mocks.MockTextRecognizer)
	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)

	rec.On("Recognize", mock.Anything, mock.MatchedBy(func(in port.RecognizeInput) bool {
		return bytes.Equal(in.FileBytes, corrupt)
	})).Return(&domain.RecognitionResult{Text: "still works", EngineUsed: domain.EngineGoogleVision}, nil)
	cls.On("Classify", mock.Anything, mock.Anything).Return(classification(domain.DocTypeUnknown, domain.DomainOther), nil)
	ext.On("Extract", mock.Anything, mock.Anything, mock.Anything).Return(map[string]any{}, nil)

	svc := service.NewIngestService(
		preprocess.New(config.PreprocessConfig{CompressThresholdKB: 1}),
		rec, cls, ext,
		config.PipelineConfig{BudgetSecs: 120},
	)
	result, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   corrupt,
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "still works", result.Text)
	rec.AssertExpectations(t)
}

func TestIngest_ChainFailurePropagatesAllReasons(t *testing.T) {
	e1 := new(mocks.MockTextRecognizer)
	e2 := new(mocks.MockTextRecognizer)
	e1.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("invalid API key"))
	e2.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	chain := recognize.NewChain([]recognize.Engine{
		{ID: domain.EngineGoogleVision, Recognizer: e1},
		{ID: domain.EngineAzureVision, Recognizer: e2},
	})

	svc := newPipeline(chain, new(mocks.MockDocumentClassifier), new(mocks.MockFieldExtractor))
	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("img"),
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllEnginesFailed)
	assert.Contains(t, err.Error(), "invalid API key")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIngest_ClassificationErrorWrapped(t *testing.T) {
	rec := new(mocks.MockTextRecognizer)
	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)

	rec.On("Recognize", mock.Anything, mock.Anything).Return(
		&domain.RecognitionResult{Text: "text", EngineUsed: domain.EngineGoogleVision}, nil)
	cls.On("Classify", mock.Anything, mock.Anything).Return(nil, errors.New("model quota exhausted"))

	svc := newPipeline(rec, cls, ext)
	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("img"),
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrClassificationFailed)
	assert.Contains(t, err.Error(), "model quota exhausted")
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_BudgetExceededIsTimeout(t *testing.T) {
	rec := new(mocks.MockTextRecognizer)
	rec.On("Recognize", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		<-ctx.Done()
	}).Return(nil, context.DeadlineExceeded)

	svc := service.NewIngestService(
		preprocess.New(config.PreprocessConfig{}),
		rec, new(mocks.MockDocumentClassifier), new(mocks.MockFieldExtractor),
		config.PipelineConfig{BudgetSecs: 1},
	)

	start := time.Now()
	_, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   []byte("img"),
		ContentType: "image/png",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPipelineTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// Scenario: a 2MB photo of a utility bill. Compression triggers, provider A
// fails with an auth error, provider B succeeds.
func TestIngest_Scenario_LargeBillWithFallback(t *testing.T) {
	data := noisyJPEG(t, 900, 900)

	e1 := new(mocks.MockTextRecognizer)
	e2 := new(mocks.MockTextRecognizer)
	e1.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("401 unauthorized"))
	e2.On("Recognize", mock.Anything, mock.MatchedBy(func(in port.RecognizeInput) bool {
		// Compression must have reduced the payload before recognition.
		return len(in.FileBytes) < len(data)
	})).Return(&domain.RecognitionResult{Text: "City Power amount due $120.00", Confidence: 0.9}, nil)

	chain := recognize.NewChain([]recognize.Engine{
		{ID: domain.EngineGoogleVision, Recognizer: e1},
		{ID: domain.EngineAzureVision, Recognizer: e2},
	})

	cls := new(mocks.MockDocumentClassifier)
	ext := new(mocks.MockFieldExtractor)
	cls.On("Classify", mock.Anything, mock.Anything).Return(classification(domain.DocTypeBill, domain.DomainHome), nil)
	ext.On("Extract", mock.Anything, mock.Anything, domain.DocTypeBill).Return(map[string]any{"amount_due": "120.00"}, nil)

	svc := service.NewIngestService(
		preprocess.New(config.PreprocessConfig{CompressThresholdKB: 1, MaxDimensionPx: 400}),
		chain, cls, ext,
		config.PipelineConfig{BudgetSecs: 120},
	)

	result, err := svc.Ingest(context.Background(), service.IngestInput{
		FileBytes:   data,
		ContentType: "image/jpeg",
		Filename:    "bill.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocTypeBill, result.DocumentType)
	assert.Equal(t, domain.DomainHome, result.SuggestedDomain)
	assert.Equal(t, domain.EngineAzureVision, result.OCREngine)
	e2.AssertExpectations(t)
}
