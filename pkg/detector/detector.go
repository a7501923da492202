// Package detector locates terms-of-service style content inside an HTML
// document using a fixed chain of heuristic strategies.
package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/termscan/models"
)

const (
	// MaxContentChars caps extracted text so huge documents can't blow up
	// prompt sizes or cache rows downstream.
	MaxContentChars = 50000

	minContentChars   = 200
	shortContentChars = 500
	acceptThreshold   = 0.6
)

// termsIndicators are phrases whose presence in a title, URL or body marks
// a document as a likely legal agreement. Matching is case-insensitive.
var termsIndicators = []string{
	"terms of service",
	"terms and conditions",
	"user agreement",
	"terms of use",
	"service agreement",
	"legal terms",
}

// legalPatterns are weaker vocabulary signals scored at half the indicator
// weight.
var legalPatterns = []string{
	"hereby agree",
	"privacy policy",
	"liability",
	"jurisdiction",
	"governing law",
	"dispute resolution",
	"termination",
}

// modalSelectors enumerate dialog/overlay containers, highest priority first.
var modalSelectors = []string{
	`[role="dialog"]`,
	`[aria-modal="true"]`,
	".modal",
	".dialog",
	".popup",
	".overlay",
	".lightbox",
	".modal-content",
}

// mainContentSelectors probe likely embedded-content containers, in order.
var mainContentSelectors = []string{
	"main",
	`[role="main"]`,
	".main-content",
	".content",
	".terms-content",
	".legal-content",
	".agreement-content",
}

// navigationSelector matches chrome regions stripped before whole-page
// extraction.
const navigationSelector = "nav, header, footer, aside, .sidebar, .menu, .breadcrumb"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Detect runs the strategy chain against a parsed document: visible modal
// overlays first, then whole-page extraction when the title or URL names a
// terms document, then known main-content containers. The first strategy to
// accept wins. The input document is never mutated, and any internal panic
// downgrades to a not-found result rather than propagating.
func Detect(doc *goquery.Document, pageURL string) (result models.DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = notFound()
		}
	}()

	if doc == nil {
		return notFound()
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	if r, ok := detectModal(doc, title); ok {
		return r
	}
	if r, ok := detectPage(doc, title, pageURL); ok {
		return r
	}
	if r, ok := detectMainContent(doc, title); ok {
		return r
	}
	return notFound()
}

func notFound() models.DetectionResult {
	return models.DetectionResult{Found: false, Location: models.LocationNone}
}

// detectModal scores visible overlay candidates and accepts the first one
// that clears the threshold.
func detectModal(doc *goquery.Document, title string) (models.DetectionResult, bool) {
	for _, selector := range modalSelectors {
		var hit models.DetectionResult
		var found bool
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if !isVisible(s) {
				return true
			}
			text, score := scoreCandidate(s)
			if score > acceptThreshold {
				hit = models.DetectionResult{
					Found:    true,
					Content:  text,
					Location: models.LocationModal,
					Title:    title,
				}
				found = true
				return false
			}
			return true
		})
		if found {
			return hit, true
		}
	}
	return models.DetectionResult{}, false
}

// detectPage extracts the whole document when its title or URL already names
// a terms page. Navigation chrome is stripped first, and the text is accepted
// unconditionally once it is long enough to be a real agreement.
func detectPage(doc *goquery.Document, title, pageURL string) (models.DetectionResult, bool) {
	lowerTitle := strings.ToLower(title)
	lowerURL := strings.ToLower(pageURL)

	indicated := false
	for _, phrase := range termsIndicators {
		if strings.Contains(lowerTitle, phrase) || strings.Contains(lowerURL, phrase) {
			indicated = true
			break
		}
	}
	if !indicated {
		return models.DetectionResult{}, false
	}

	text := extractPageText(doc)
	if utf8.RuneCountInString(text) <= shortContentChars {
		return models.DetectionResult{}, false
	}
	return models.DetectionResult{
		Found:    true,
		Content:  text,
		Location: models.LocationPage,
		Title:    title,
	}, true
}

// detectMainContent probes known content containers in priority order.
func detectMainContent(doc *goquery.Document, title string) (models.DetectionResult, bool) {
	for _, selector := range mainContentSelectors {
		s := doc.Find(selector).First()
		if s.Length() == 0 {
			continue
		}
		text, score := scoreCandidate(s)
		if score > acceptThreshold {
			return models.DetectionResult{
				Found:    true,
				Content:  text,
				Location: models.LocationMainContent,
				Title:    title,
			}, true
		}
	}
	return models.DetectionResult{}, false
}

// isVisible rejects candidates hidden via inline style or the hidden
// attribute. Detection works on a static snapshot, so inline declarations are
// the only style information available.
func isVisible(s *goquery.Selection) bool {
	if _, hidden := s.Attr("hidden"); hidden {
		return false
	}
	style, ok := s.Attr("style")
	if !ok {
		return true
	}
	for _, decl := range strings.Split(strings.ToLower(style), ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		switch prop {
		case "display":
			if val == "none" {
				return false
			}
		case "visibility":
			if val == "hidden" {
				return false
			}
		case "opacity":
			if val == "0" || val == "0.0" || val == "0%" {
				return false
			}
		}
	}
	return true
}

// scoreCandidate extracts a candidate's cleaned text and computes its
// confidence score. Candidates shorter than 200 characters score zero.
func scoreCandidate(s *goquery.Selection) (string, float64) {
	text := extractText(s)
	if utf8.RuneCountInString(text) < minContentChars {
		return "", 0
	}
	return text, Score(text)
}

// Score computes the confidence that text is a legal agreement: 0.2 per
// distinct terms indicator, 0.1 per distinct legal pattern, 0.1 each for
// exceeding 1000 and 5000 characters, minus 0.3 under 500 characters,
// clamped to [0, 1]. The weights are fixed so acceptance stays reproducible;
// the score is a gate, not a calibrated probability.
func Score(text string) float64 {
	lower := strings.ToLower(text)

	score := 0.0
	for _, phrase := range termsIndicators {
		if strings.Contains(lower, phrase) {
			score += 0.2
		}
	}
	for _, pattern := range legalPatterns {
		if strings.Contains(lower, pattern) {
			score += 0.1
		}
	}

	length := utf8.RuneCountInString(text)
	if length > 1000 {
		score += 0.1
	}
	if length > 5000 {
		score += 0.1
	}
	if length < shortContentChars {
		score -= 0.3
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// extractText takes a candidate's text without mutating the live document:
// the subtree is serialized and re-parsed, script/style/noscript descendants
// are dropped from the copy, and the merged text is cleaned.
func extractText(s *goquery.Selection) string {
	html, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	copyDoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	copyDoc.Find("script, style, noscript").Remove()
	return cleanText(copyDoc.Text())
}

// extractPageText extracts whole-document text with navigation chrome
// removed, again on a re-parsed copy so the caller's document is untouched.
func extractPageText(doc *goquery.Document) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	copyDoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	copyDoc.Find(navigationSelector + ", script, style, noscript").Remove()

	body := copyDoc.Find("body")
	if body.Length() > 0 {
		return cleanText(body.Text())
	}
	return cleanText(copyDoc.Text())
}

// cleanText collapses whitespace runs and truncates to MaxContentChars.
func cleanText(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) > MaxContentChars {
		return string(runes[:MaxContentChars])
	}
	return text
}
