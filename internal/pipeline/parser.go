package pipeline

import "strings"

// The model is asked for labeled lines but cannot be trusted to produce them.
// Parsing here is total: a malformed reply degrades to documented defaults and
// is reported to the caller via the ok flag, never as an error.

// NormalizationResult is the parsed output of the remark-normalization stage.
type NormalizationResult struct {
	CleanedRemark string
	Notes         string
}

// CategorizationResult is the parsed output of the categorization stage.
type CategorizationResult struct {
	Category    string
	Subcategory string
	Confidence  Confidence
}

// ParseNormalization extracts CLEANED/NOTES from a model reply. Labels are
// matched case-insensitively, in any order. Defaults on missing labels:
// cleaned remark falls back to the raw remark unchanged, notes to empty.
// ok is false when any expected label was missing.
func ParseNormalization(raw, rawRemark string) (NormalizationResult, bool) {
	fields := parseLabeledLines(raw)

	res := NormalizationResult{CleanedRemark: rawRemark}
	cleaned, haveCleaned := fields["CLEANED"]
	if haveCleaned && cleaned != "" {
		res.CleanedRemark = cleaned
	}
	notes, haveNotes := fields["NOTES"]
	if haveNotes {
		res.Notes = cleanPlaceholder(notes)
	}

	return res, haveCleaned && haveNotes
}

// ParseCategorization extracts CATEGORY/SUBCATEGORY/CONFIDENCE from a model
// reply. Defaults on missing labels: category "Uncategorized", subcategory
// empty, confidence Low. SUBCATEGORY is optional and does not affect ok.
func ParseCategorization(raw string) (CategorizationResult, bool) {
	fields := parseLabeledLines(raw)

	res := CategorizationResult{
		Category:   UncategorizedLabel,
		Confidence: ConfidenceLow,
	}

	category, haveCategory := fields["CATEGORY"]
	if haveCategory && cleanPlaceholder(category) != "" {
		res.Category = category
	}
	if sub, ok := fields["SUBCATEGORY"]; ok {
		res.Subcategory = cleanPlaceholder(sub)
	}
	confidence, haveConfidence := fields["CONFIDENCE"]
	if haveConfidence {
		res.Confidence = ParseConfidence(confidence)
	}

	return res, haveCategory && haveConfidence
}

// knownLabels is the closed set of labels either stage may produce.
var knownLabels = []string{"CLEANED", "NOTES", "CATEGORY", "SUBCATEGORY", "CONFIDENCE"}

// parseLabeledLines scans the reply line by line for "LABEL: value" entries.
// Unlabeled lines following a labeled one are treated as wrapped continuations
// of that label's value. Later duplicates overwrite earlier ones.
func parseLabeledLines(raw string) map[string]string {
	fields := make(map[string]string)
	current := ""

	for _, line := range strings.Split(stripFences(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			current = ""
			continue
		}

		if label, value, ok := splitLabel(line); ok {
			fields[label] = value
			current = label
			continue
		}

		if current != "" {
			fields[current] = strings.TrimSpace(fields[current] + " " + line)
		}
	}

	return fields
}

// splitLabel matches a known label prefix case-insensitively, tolerating
// Markdown bold markers and list dashes the model sometimes adds.
func splitLabel(line string) (label, value string, ok bool) {
	trimmed := strings.TrimLeft(line, "-* \t")

	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return "", "", false
	}

	candidate := normalizeToken(strings.TrimRight(trimmed[:idx], "* "))
	for _, known := range knownLabels {
		if candidate == known {
			return known, strings.TrimSpace(trimmed[idx+1:]), true
		}
	}
	return "", "", false
}

// stripFences removes Markdown code fences the model may wrap its reply in,
// same trick the statement parser plays on JSON output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanPlaceholder converts the model's "nothing here" spellings to empty.
func cleanPlaceholder(s string) string {
	switch normalizeToken(s) {
	case "", "-", "—", "NONE", "NULL", "N/A":
		return ""
	}
	return s
}

func normalizeToken(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
