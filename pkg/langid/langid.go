// Package langid picks the report language for a document from the languages
// the analysis prompt supports.
package langid

import (
	"github.com/pemistahl/lingua-go"
)

// Detector classifies text among the supported report languages. Building
// the underlying models is comparatively expensive, so construct one and
// reuse it.
type Detector struct {
	inner lingua.LanguageDetector
}

// New creates a detector restricted to English, Hindi and Tamil.
func New() *Detector {
	return &Detector{
		inner: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Hindi, lingua.Tamil).
			Build(),
	}
}

// Code returns the report-language code for text: "hi", "ta" or "en".
// Undecidable input falls back to "en", matching the prompt builder's own
// fallback.
func (d *Detector) Code(text string) string {
	language, ok := d.inner.DetectLanguageOf(text)
	if !ok {
		return "en"
	}
	switch language {
	case lingua.Hindi:
		return "hi"
	case lingua.Tamil:
		return "ta"
	default:
		return "en"
	}
}
