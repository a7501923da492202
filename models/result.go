// Package models defines data structures shared across detection, analysis
// and caching.
package models

import "time"

// Location identifies which detection strategy produced a result.
type Location string

const (
	LocationModal       Location = "modal"
	LocationPage        Location = "page"
	LocationMainContent Location = "main-content"
	LocationNone        Location = "none"
)

// DetectionResult is the outcome of scanning one document for terms-like
// content. It is produced fresh on every detection request and never
// persisted directly.
type DetectionResult struct {
	Found    bool     `json:"found"`
	Content  string   `json:"content,omitempty"` // cleaned text, capped at 50k chars
	Location Location `json:"location"`
	Title    string   `json:"title,omitempty"`
}

// RiskLevel is the overall risk classification of an agreement.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the three accepted risk levels.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// AnalysisResult is the normalized risk summary for one document.
// RiskLevel is always one of the three accepted values; KeyPoints and
// RedFlags are capped after parsing, never before.
type AnalysisResult struct {
	Summary   string    `json:"summary"`
	RiskLevel RiskLevel `json:"riskLevel"`
	KeyPoints []string  `json:"keyPoints"`
	RedFlags  []string  `json:"redFlags"`
	Timestamp time.Time `json:"timestamp"`
}

// CacheEntry is one stored analysis, owned by the result cache. An entry is
// created on the first successful analysis for a page key, overwritten on
// re-analysis, and treated as absent once older than the cache TTL.
type CacheEntry struct {
	PageKey   string         `json:"page_key"`
	Language  string         `json:"language"`
	Content   string         `json:"content"`
	Result    AnalysisResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}
