// Package prompt builds analysis prompts and tolerantly decodes model
// replies into normalized analysis results.
package prompt

import (
	"fmt"
	"strings"
)

// MaxPromptChars is the hard ceiling on document text embedded in a prompt.
// Anything past it is cut before the request is built; the backend separately
// caps output tokens.
const MaxPromptChars = 8000

// languageInstructions maps supported report languages to the instruction
// appended to the prompt. Unknown codes fall back to English.
var languageInstructions = map[string]string{
	"en": "Respond in English.",
	"hi": "Respond in Hindi (हिन्दी में उत्तर दें).",
	"ta": "Respond in Tamil (தமிழில் பதிலளிக்கவும்).",
}

const promptTemplate = `You are a legal document analyzer. Analyze the following terms of service or legal agreement for an ordinary user. %s

Focus on these areas:
- User obligations
- Company rights
- Data privacy
- Account termination
- Dispute resolution
- Liability

Respond with a single JSON object using exactly this schema:
{
  "summary": "a plain-language summary of the agreement",
  "riskLevel": "low" | "medium" | "high",
  "keyPoints": ["up to 8 key points a user should know"],
  "redFlags": ["up to 5 clauses that are unusual or concerning"]
}

Document:
%s`

// Build assembles the analysis prompt for the given document text and report
// language. Text is truncated to MaxPromptChars before embedding.
func Build(text, language string) string {
	instruction, ok := languageInstructions[language]
	if !ok {
		instruction = languageInstructions["en"]
	}
	if runes := []rune(text); len(runes) > MaxPromptChars {
		text = string(runes[:MaxPromptChars])
	}
	return fmt.Sprintf(promptTemplate, instruction, strings.TrimSpace(text))
}
