package gemini

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/capability"
	"github.com/spigell/career-copilot/internal/salary"
	"github.com/spigell/career-copilot/internal/util"
)

//go:embed salary_prompt.md
var salaryPromptTemplate string

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Extractor implements the salary extraction capability on top of a Gemini
// content generator.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewExtractor(generator contentGenerator, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{generator: generator, logger: logger}
}

// Extract asks the model for structured salary fields. The response may be
// wrapped in fences or prose; anything that still fails to parse is a
// validation error for the normalizer to degrade on.
func (e *Extractor) Extract(ctx context.Context, text string) (*salary.Extraction, error) {
	prompt := strings.ReplaceAll(salaryPromptTemplate, "{{SALARY_TEXT}}", text)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("salary extraction response",
		zap.String("response_preview", util.TruncateForLog(raw, 200)),
	)

	cleaned := jsonObjectRe.FindString(raw)
	if cleaned == "" {
		return nil, &capability.ValidationError{Op: "extract salary", Detail: "no JSON object in response"}
	}

	var ext salary.Extraction
	if err := json.Unmarshal([]byte(cleaned), &ext); err != nil {
		return nil, &capability.ValidationError{Op: "extract salary", Detail: err.Error()}
	}

	return &ext, nil
}
