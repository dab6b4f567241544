package ai

import "regexp"

// Review signals are scanned locally rather than asked of the model: the
// regexes are cheap, deterministic, and catch tokens the model drops.
var (
	reDate = regexp.MustCompile(
		`\b(?:\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2}|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})\b`)
	reNumber = regexp.MustCompile(
		`[$€£₹]\s?\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\b\d{1,3}(?:,\d{3})*\.\d{2}\b|\b\d{4,}\b`)
	reName = regexp.MustCompile(
		`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)
)

// ScanDates returns every date-like token in text, de-duplicated, in order
// of first appearance.
func ScanDates(text string) []string {
	return dedupe(reDate.FindAllString(text, -1))
}

// ScanNumbers returns every amount- or number-like token in text.
func ScanNumbers(text string) []string {
	return dedupe(reNumber.FindAllString(text, -1))
}

// ScanNames returns every proper-name-like token (consecutive capitalized
// words) in text. Heuristic by nature; meant for review UIs, not identity.
func ScanNames(text string) []string {
	return dedupe(reName.FindAllString(text, -1))
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// mergeSignals combines model-reported and locally-scanned signal lists.
func mergeSignals(model, scanned []string) []string {
	return dedupe(append(model, scanned...))
}
