package prompt

import (
	"encoding/json"
	"strings"

	"github.com/dtnitsch/termscan/models"
)

const (
	maxKeyPoints = 8
	maxRedFlags  = 5

	// degradedSummaryChars bounds how much raw model text is surfaced when
	// structured decoding fails entirely.
	degradedSummaryChars = 1000

	fallbackSummary     = "The analysis did not include a summary."
	placeholderKeyPoint = "Review the full agreement manually; a structured breakdown was not available."
)

// Parse decodes a raw model reply into an analysis result. It runs in two
// phases: extract the first {...} span with a greedy brace match, then decode
// it and normalize each field. Decode failures degrade to a best-effort
// result built from the raw text. Parse never fails; the timestamp is left
// for the caller to stamp.
func Parse(raw string) models.AnalysisResult {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return degraded(raw)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return degraded(raw)
	}
	return normalize(fields)
}

// normalize applies per-field defaulting: summary falls back to a fixed
// placeholder, riskLevel must be exactly one of the accepted tokens, and the
// two lists are only taken from real sequences, capped after parsing.
func normalize(fields map[string]any) models.AnalysisResult {
	result := models.AnalysisResult{
		Summary:   fallbackSummary,
		RiskLevel: models.RiskMedium,
		KeyPoints: []string{placeholderKeyPoint},
		RedFlags:  []string{},
	}

	if s, ok := fields["summary"].(string); ok && strings.TrimSpace(s) != "" {
		result.Summary = s
	}
	if s, ok := fields["riskLevel"].(string); ok {
		if level := models.RiskLevel(s); level.Valid() {
			result.RiskLevel = level
		}
	}
	if seq, ok := fields["keyPoints"].([]any); ok {
		result.KeyPoints = stringItems(seq, maxKeyPoints)
	}
	if seq, ok := fields["redFlags"].([]any); ok {
		result.RedFlags = stringItems(seq, maxRedFlags)
	}
	return result
}

// stringItems keeps the string elements of a decoded sequence, truncated to
// max entries.
func stringItems(seq []any, max int) []string {
	items := make([]string, 0, len(seq))
	for _, v := range seq {
		if s, ok := v.(string); ok {
			items = append(items, s)
		}
	}
	if len(items) > max {
		items = items[:max]
	}
	return items
}

// degraded builds the fallback result used when no structured data could be
// recovered: the leading raw text stands in for the summary.
func degraded(raw string) models.AnalysisResult {
	summary := strings.TrimSpace(raw)
	if runes := []rune(summary); len(runes) > degradedSummaryChars {
		summary = string(runes[:degradedSummaryChars])
	}
	return models.AnalysisResult{
		Summary:   summary,
		RiskLevel: models.RiskMedium,
		KeyPoints: []string{placeholderKeyPoint},
		RedFlags:  []string{},
	}
}
