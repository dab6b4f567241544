package ai

import (
	"context"
	"fmt"
	"strings"

	"lifedash/internal/domain"
)

// Extractor produces structured fields from recognized text. It implements
// port.FieldExtractor with both the standard and the enhanced variant.
type Extractor struct {
	client *Client
}

// NewExtractor creates an Extractor over a shared AI client.
func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

// standardFields names the handful of key fields the flat extraction asks
// for per document type.
var standardFields = map[domain.DocumentType][]string{
	domain.DocTypeReceipt:       {"merchant", "date", "amount", "currency", "payment_method"},
	domain.DocTypeBill:          {"provider", "account_number", "due_date", "amount_due", "billing_period"},
	domain.DocTypeInvoice:       {"vendor", "invoice_number", "invoice_date", "due_date", "total"},
	domain.DocTypeInsurance:     {"insurer", "policy_number", "coverage_type", "premium", "expiry_date"},
	domain.DocTypeMedical:       {"provider", "patient_name", "date", "diagnosis", "notes"},
	domain.DocTypePrescription:  {"medication", "dosage", "prescriber", "date", "refills"},
	domain.DocTypeBankStatement: {"bank", "account_number", "statement_period", "closing_balance"},
	domain.DocTypeIDDocument:    {"document_kind", "full_name", "id_number", "issue_date", "expiry_date"},
	domain.DocTypeContract:      {"parties", "effective_date", "term", "subject"},
	domain.DocTypeWarranty:      {"product", "vendor", "purchase_date", "warranty_until"},
	domain.DocTypeTaxDocument:   {"tax_year", "form_type", "issuer", "total_amount"},
}

func fieldsFor(docType domain.DocumentType) []string {
	if fields, ok := standardFields[docType]; ok {
		return fields
	}
	return []string{"title", "date", "amount", "parties"}
}

func buildExtractPrompt(text string, docType domain.DocumentType) string {
	return `You are a document data extraction assistant. The document below is a ` + string(docType) + `. Extract the following fields: ` + strings.Join(fieldsFor(docType), ", ") + `.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — a single flat object mapping field names to values. Omit any field you cannot determine from the text; never guess.

Document text:
---
` + text + `
---`
}

func buildEnhancedPrompt(text string, docType domain.DocumentType) string {
	return `You are a document data extraction assistant. The document below is a ` + string(docType) + `. Extract EVERY piece of structured data you can find — aim for 20 to 30 fields where the document supports it (parties, identifiers, dates, amounts, addresses, line items as numbered fields, terms, contact details).

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "fields": {
    "<field_name>": {"value": "", "confidence": 0.0, "source_span": ""}
  },
  "document_title": "",
  "summary": "",
  "all_dates_found": [],
  "all_numbers_found": [],
  "all_names_found": []
}

For each field, "confidence" is a float between 0.0 and 1.0 and "source_span" is the exact text the value was read from. Omit any field you cannot determine; never guess. "document_title" is a short human title for this document; "summary" is one or two sentences.

Document text:
---
` + text + `
---`
}

// Extract returns the standard flat field map. Fields the model cannot
// determine are omitted.
func (e *Extractor) Extract(ctx context.Context, text string, docType domain.DocumentType) (map[string]any, error) {
	raw, err := e.client.Complete(ctx, buildExtractPrompt(text, docType))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	m, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return cleanFieldMap(m), nil
}

// ExtractEnhanced returns the wide extraction variant with per-field
// confidence and provenance, plus review signals merged from the model
// output and a local regex scan of the raw text.
func (e *Extractor) ExtractEnhanced(ctx context.Context, text string, docType domain.DocumentType) (*domain.EnhancedExtraction, error) {
	raw, err := e.client.Complete(ctx, buildEnhancedPrompt(text, docType))
	if err != nil {
		return nil, fmt.Errorf("extract enhanced: %w", err)
	}
	m, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("extract enhanced: %w", err)
	}

	result := &domain.EnhancedExtraction{
		Fields: make(map[string]domain.ExtractedField),
	}

	if fields, ok := m["fields"].(map[string]any); ok {
		for name, v := range fields {
			field, ok := parseField(v)
			if !ok {
				continue
			}
			result.Fields[name] = field
		}
	}
	if title, ok := m["document_title"].(string); ok {
		result.DocumentTitle = strings.TrimSpace(title)
	}
	if summary, ok := m["summary"].(string); ok {
		result.Summary = strings.TrimSpace(summary)
	}

	result.AllDatesFound = mergeSignals(stringList(m["all_dates_found"]), ScanDates(text))
	result.AllNumbersFound = mergeSignals(stringList(m["all_numbers_found"]), ScanNumbers(text))
	result.AllNamesFound = mergeSignals(stringList(m["all_names_found"]), ScanNames(text))

	return result, nil
}

// parseField reads one enhanced field object, tolerating bare scalar values
// where the model skipped the wrapper.
func parseField(v any) (domain.ExtractedField, bool) {
	switch t := v.(type) {
	case map[string]any:
		value := t["value"]
		if value == nil {
			return domain.ExtractedField{}, false
		}
		if s, isStr := value.(string); isStr && strings.TrimSpace(s) == "" {
			return domain.ExtractedField{}, false
		}
		field := domain.ExtractedField{Value: value, Confidence: 0.5}
		if conf, ok := asFloat(t["confidence"]); ok {
			field.Confidence = clamp01(conf)
		}
		if span, ok := t["source_span"].(string); ok {
			field.SourceSpan = strings.TrimSpace(span)
		}
		return field, true
	case nil:
		return domain.ExtractedField{}, false
	default:
		if s := asString(t); s != "" || t != nil {
			return domain.ExtractedField{Value: t, Confidence: 0.5}, true
		}
		return domain.ExtractedField{}, false
	}
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
