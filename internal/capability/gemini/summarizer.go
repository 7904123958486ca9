package gemini

import (
	"context"
	"fmt"
	"strings"

	_ "embed"
)

//go:embed summary_prompt.md
var summaryPromptTemplate string

// Summarizer condenses oversized text toward a target length using a Gemini
// content generator. The cost guard treats it as untrusted: an overshooting
// or failing summary falls back to truncation there.
type Summarizer struct {
	generator contentGenerator
}

func NewSummarizer(generator contentGenerator) *Summarizer {
	return &Summarizer{generator: generator}
}

// Summarize returns a condensed version of text aiming at targetLen runes.
func (s *Summarizer) Summarize(ctx context.Context, text string, targetLen int) (string, error) {
	prompt := strings.ReplaceAll(summaryPromptTemplate, "{{TARGET_LEN}}", fmt.Sprintf("%d", targetLen))
	prompt = strings.ReplaceAll(prompt, "{{TEXT}}", text)

	return s.generator.GenerateContent(ctx, prompt)
}
