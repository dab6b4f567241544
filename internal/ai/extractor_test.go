package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifedash/internal/ai"
	"lifedash/internal/config"
	"lifedash/internal/domain"
)

func newExtractor(t *testing.T, content string) (*ai.Extractor, func()) {
	srv := chatServer(t, content)
	client := ai.NewClient(&config.AIConfig{APIKey: "test-key", Endpoint: srv.URL})
	return ai.NewExtractor(client), srv.Close
}

func TestExtract_StandardDropsEmptyFields(t *testing.T) {
	e, closeFn := newExtractor(t, `{
		"merchant": "Walmart",
		"date": "2024-03-01",
		"amount": "42.10",
		"currency": "",
		"payment_method": null
	}`)
	defer closeFn()

	fields, err := e.Extract(context.Background(), "WALMART Total: $42.10", domain.DocTypeReceipt)

	require.NoError(t, err)
	assert.Equal(t, "Walmart", fields["merchant"])
	assert.Equal(t, "42.10", fields["amount"])
	assert.NotContains(t, fields, "currency")
	assert.NotContains(t, fields, "payment_method")
}

func TestExtractEnhanced_ParsesFieldsWithConfidence(t *testing.T) {
	e, closeFn := newExtractor(t, `{
		"fields": {
			"merchant": {"value": "Walmart", "confidence": 0.95, "source_span": "WALMART"},
			"amount": {"value": "42.10", "confidence": 0.9, "source_span": "Total: $42.10"},
			"cashier": {"value": "", "confidence": 0.1},
			"lane": {"value": null}
		},
		"document_title": "Walmart receipt",
		"summary": "A grocery receipt for $42.10.",
		"all_dates_found": ["2024-03-01"],
		"all_numbers_found": ["$42.10"],
		"all_names_found": []
	}`)
	defer closeFn()

	result, err := e.ExtractEnhanced(context.Background(), "WALMART 2024-03-01 Total: $42.10 served by John Smith", domain.DocTypeReceipt)

	require.NoError(t, err)
	require.Contains(t, result.Fields, "merchant")
	assert.Equal(t, "Walmart", result.Fields["merchant"].Value)
	assert.InDelta(t, 0.95, result.Fields["merchant"].Confidence, 0.001)
	assert.Equal(t, "WALMART", result.Fields["merchant"].SourceSpan)
	assert.NotContains(t, result.Fields, "cashier", "empty values are omitted")
	assert.NotContains(t, result.Fields, "lane", "null values are omitted")
	assert.Equal(t, "Walmart receipt", result.DocumentTitle)
	assert.NotEmpty(t, result.Summary)
}

func TestExtractEnhanced_MergesLocallyScannedSignals(t *testing.T) {
	// The model misses the date and the name; the local scan catches both.
	e, closeFn := newExtractor(t, `{
		"fields": {"amount": {"value": "99.00", "confidence": 0.8}},
		"document_title": "Bill",
		"summary": "s",
		"all_dates_found": [],
		"all_numbers_found": ["99.00"],
		"all_names_found": []
	}`)
	defer closeFn()

	text := "Issued 12/05/2024 to Jane Doe, total 99.00"
	result, err := e.ExtractEnhanced(context.Background(), text, domain.DocTypeBill)

	require.NoError(t, err)
	assert.Contains(t, result.AllDatesFound, "12/05/2024")
	assert.Contains(t, result.AllNamesFound, "Jane Doe")
	assert.Contains(t, result.AllNumbersFound, "99.00")
	// No duplicates from merging model and scan output.
	count := 0
	for _, n := range result.AllNumbersFound {
		if n == "99.00" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFlatten_EnhancedIsSupersetShape(t *testing.T) {
	enhanced := &domain.EnhancedExtraction{
		Fields: map[string]domain.ExtractedField{
			"merchant": {Value: "Walmart", Confidence: 0.9},
			"amount":   {Value: "42.10", Confidence: 0.8},
			"date":     {Value: "2024-03-01", Confidence: 0.7},
		},
	}

	flat := enhanced.Flatten()

	require.Len(t, flat, 3)
	for name, field := range enhanced.Fields {
		assert.Equal(t, field.Value, flat[name])
	}
}

func TestExtract_ModelGarbageErrors(t *testing.T) {
	e, closeFn := newExtractor(t, `this is not json at all`)
	defer closeFn()

	_, err := e.Extract(context.Background(), "text", domain.DocTypeReceipt)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding model JSON")
}
