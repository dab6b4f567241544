package ai

import (
	"context"
	"fmt"
	"strings"

	"lifedash/internal/domain"
)

// Classifier determines document type and target life domain from raw OCR
// text. It implements port.DocumentClassifier.
type Classifier struct {
	client *Client
}

// NewClassifier creates a Classifier over a shared AI client.
func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// knownTypes drives both the prompt and output validation.
var knownTypes = []domain.DocumentType{
	domain.DocTypeReceipt,
	domain.DocTypeBill,
	domain.DocTypeInvoice,
	domain.DocTypeInsurance,
	domain.DocTypeMedical,
	domain.DocTypePrescription,
	domain.DocTypeBankStatement,
	domain.DocTypeIDDocument,
	domain.DocTypeContract,
	domain.DocTypeWarranty,
	domain.DocTypeTaxDocument,
}

// typeIcons gives each document type a UI icon; the catch-all gets a page.
var typeIcons = map[domain.DocumentType]string{
	domain.DocTypeReceipt:       "🧾",
	domain.DocTypeBill:          "💡",
	domain.DocTypeInvoice:       "📑",
	domain.DocTypeInsurance:     "🛡️",
	domain.DocTypeMedical:       "🏥",
	domain.DocTypePrescription:  "💊",
	domain.DocTypeBankStatement: "🏦",
	domain.DocTypeIDDocument:    "🪪",
	domain.DocTypeContract:      "✍️",
	domain.DocTypeWarranty:      "🔧",
	domain.DocTypeTaxDocument:   "🧮",
	domain.DocTypeUnknown:       "📄",
}

// IconFor returns the UI icon for a document type.
func IconFor(t domain.DocumentType) string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return typeIcons[domain.DocTypeUnknown]
}

func buildClassifyPrompt(text string) string {
	var types []string
	for _, t := range knownTypes {
		types = append(types, string(t))
	}
	var domains []string
	for d := range domain.KnownLifeDomains {
		domains = append(domains, string(d))
	}

	return `You are a document classification assistant for a personal life-management dashboard. Classify the document text below.

Document types (pick exactly one, or "Unknown" if none fit):
` + strings.Join(types, ", ") + `

Life domains (pick exactly one):
` + strings.Join(domains, ", ") + `

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation:
{
  "type": "",
  "confidence": 0.0,
  "suggested_domain": "",
  "suggested_action": "",
  "reasoning": ""
}

"confidence" is a float between 0.0 and 1.0. "suggested_action" is one short user-facing sentence telling the user what to do with this document (e.g. "File this receipt under finance and record the amount."). "reasoning" explains the classification in user-facing language.

Document text:
---
` + text + `
---`
}

// Classify classifies non-empty document text. The orchestrator never calls
// this with empty text.
func (c *Classifier) Classify(ctx context.Context, text string) (*domain.ClassificationResult, error) {
	raw, err := c.client.Complete(ctx, buildClassifyPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	m, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	result := &domain.ClassificationResult{
		Type:            domain.DocTypeUnknown,
		SuggestedDomain: domain.DomainOther,
	}

	if t, ok := m["type"].(string); ok {
		result.Type = normalizeType(t)
	}
	if conf, ok := asFloat(m["confidence"]); ok {
		result.Confidence = clamp01(conf)
	}
	if d, ok := m["suggested_domain"].(string); ok {
		result.SuggestedDomain = domain.CoerceLifeDomain(d)
	}
	if action, ok := m["suggested_action"].(string); ok {
		result.SuggestedAction = strings.TrimSpace(action)
	}
	if result.SuggestedAction == "" {
		result.SuggestedAction = "Review this document and file it manually."
	}
	if reasoning, ok := m["reasoning"].(string); ok {
		result.Reasoning = strings.TrimSpace(reasoning)
	}
	result.Icon = IconFor(result.Type)

	return result, nil
}

// normalizeType maps model output onto a known document type, tolerating
// case differences.
func normalizeType(s string) domain.DocumentType {
	s = strings.TrimSpace(s)
	for _, t := range knownTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return domain.DocTypeUnknown
}
