package prompt

import (
	"strings"
	"testing"
)

func TestBuild_LanguageInstruction(t *testing.T) {
	tests := []struct {
		name     string
		language string
		want     string
	}{
		{"english", "en", "Respond in English."},
		{"hindi", "hi", "Respond in Hindi"},
		{"tamil", "ta", "Respond in Tamil"},
		{"unknown falls back to english", "fr", "Respond in English."},
		{"empty falls back to english", "", "Respond in English."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build("some agreement text", tt.language)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Build() missing instruction %q", tt.want)
			}
		})
	}
}

func TestBuild_TruncatesLongText(t *testing.T) {
	text := strings.Repeat("a", MaxPromptChars+500)
	got := Build(text, "en")
	if strings.Contains(got, strings.Repeat("a", MaxPromptChars+1)) {
		t.Errorf("Build() embedded more than %d chars of document text", MaxPromptChars)
	}
	if !strings.Contains(got, strings.Repeat("a", MaxPromptChars)) {
		t.Error("Build() truncated below the documented ceiling")
	}
}

func TestBuild_EmbedsSchemaAndFocusAreas(t *testing.T) {
	got := Build("text", "en")
	for _, want := range []string{
		`"summary"`, `"riskLevel"`, `"keyPoints"`, `"redFlags"`,
		"User obligations", "Company rights", "Data privacy",
		"Account termination", "Dispute resolution", "Liability",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() missing %q", want)
		}
	}
}
