// Package match scores a candidate resume against a job posting. The
// reasoning itself is delegated to an injected scoring capability; this
// package owns the contract around it: deterministic prompt construction,
// coercion of untrusted output into an exact shape, the local
// recommend-apply rule and bounded retries.
package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/capability"
	"github.com/spigell/career-copilot/internal/job"
	"github.com/spigell/career-copilot/internal/util"
)

//go:embed prompt.md
var promptTemplate string

const (
	fallbackReasoning = "No reasoning returned by the scoring capability."
	maxReasoningLen   = 600
	maxMissingSkills  = 10
	defaultMaxLogLen  = 200
)

// Result is the matcher output for one (resume, posting) pair.
type Result struct {
	// Score is the 0-100 compatibility score. Meaningless when Error is set.
	Score int `json:"score"`
	// RecommendApply is derived locally from Score against the configured
	// threshold, never by the scoring capability.
	RecommendApply bool     `json:"recommend_apply"`
	Reasoning      string   `json:"reasoning"`
	MissingSkills  []string `json:"missing_skills"`
	// Error marks a record that could not be scored after retries. The
	// aggregator reports it distinctly from a genuinely low score.
	Error string `json:"error,omitempty"`
	// Cause holds the underlying failure for programmatic checks, such as
	// telling a canceled call apart from an exhausted retry budget.
	Cause error `json:"-"`
	// Raw preserves the capability response for debugging.
	Raw string `json:"-"`
}

// Scored reports whether the result carries a usable score.
func (r *Result) Scored() bool {
	return r != nil && r.Error == ""
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Matcher evaluates postings against one resume.
type Matcher struct {
	generator   contentGenerator
	threshold   int
	retry       capability.RetryPolicy
	callTimeout time.Duration
	logger      *zap.Logger
	maxLogLen   int
}

// Config carries the matcher's explicit construction-time settings.
type Config struct {
	// RecommendThreshold is the score cutoff for recommend_apply.
	RecommendThreshold int
	MaxRetries         int
	RetryBackoffBase   time.Duration
	CallTimeout        time.Duration
	MaxLogLength       int
}

func NewMatcher(generator contentGenerator, cfg Config, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLen
	}

	return &Matcher{
		generator:   generator,
		threshold:   cfg.RecommendThreshold,
		retry:       capability.RetryPolicy{MaxRetries: cfg.MaxRetries, Base: cfg.RetryBackoffBase},
		callTimeout: cfg.CallTimeout,
		logger:      logger,
		maxLogLen:   maxLogLen,
	}
}

// Threshold returns the configured recommend-apply cutoff.
func (m *Matcher) Threshold() int { return m.threshold }

// Evaluate scores one posting. It always returns a Result: transient
// capability failures are retried with backoff, and exhaustion produces an
// error-marked result rather than a dropped record. jobText must already be
// cost-guarded by the caller.
func (m *Matcher) Evaluate(ctx context.Context, resume *job.Resume, rec *job.Record, jobText string) *Result {
	prompt, err := m.buildPrompt(resume, rec, jobText)
	if err != nil {
		return errorResult(err)
	}

	m.logger.Debug("scoring request",
		zap.String("listing_id", rec.ListingID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, m.maxLogLen)),
	)

	var raw string
	err = m.retry.Do(ctx, m.logger, "score", func(attemptCtx context.Context) error {
		return capability.WithTimeout(attemptCtx, m.callTimeout, func(callCtx context.Context) error {
			var genErr error
			raw, genErr = m.generator.GenerateContent(callCtx, prompt)
			return genErr
		})
	})
	if err != nil {
		m.logger.Warn("scoring failed after retries",
			zap.String("listing_id", rec.ListingID),
			zap.Error(err),
		)
		return errorResult(err)
	}

	m.logger.Debug("scoring response",
		zap.String("listing_id", rec.ListingID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, m.maxLogLen)),
	)

	result := m.parseResponse(raw)
	result.Raw = raw
	return result
}

// buildPrompt renders the embedded template. The same resume and posting
// always produce byte-identical payloads.
func (m *Matcher) buildPrompt(resume *job.Resume, rec *job.Record, jobText string) (string, error) {
	if resume == nil || strings.TrimSpace(resume.Text) == "" {
		return "", fmt.Errorf("resume text is required")
	}

	payload := struct {
		Title       string   `json:"title"`
		Company     string   `json:"company"`
		Location    string   `json:"location"`
		Description string   `json:"description"`
		Skills      []string `json:"candidate_skills,omitempty"`
	}{
		Title:       rec.Title,
		Company:     rec.Company,
		Location:    rec.Location,
		Description: jobText,
		Skills:      resume.Skills,
	}

	jobJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", resume.Text)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	return prompt, nil
}

// parseResponse coerces the raw capability output into the exact result
// shape. Malformed pieces degrade field by field, they never fail the record.
func (m *Matcher) parseResponse(raw string) *Result {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		m.logger.Warn("scoring response is not valid JSON, using fallback result",
			zap.String("response_preview", util.TruncateForLog(raw, m.maxLogLen)),
		)
		return m.finish(&rawAssessment{})
	}

	var shape rawAssessment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &shape,
	})
	if err == nil {
		if derr := decoder.Decode(data); derr != nil {
			m.logger.Debug("scoring response shape mismatch", zap.Error(derr))
		}
	}

	return m.finish(&shape)
}

type rawAssessment struct {
	MatchScore    float64  `mapstructure:"match_score"`
	Reasoning     string   `mapstructure:"reasoning"`
	MissingSkills []string `mapstructure:"missing_skills"`
}

func (m *Matcher) finish(shape *rawAssessment) *Result {
	score := clampScore(shape.MatchScore)

	reasoning := strings.TrimSpace(shape.Reasoning)
	if reasoning == "" {
		reasoning = fallbackReasoning
	}
	if utf8.RuneCountInString(reasoning) > maxReasoningLen {
		reasoning = util.TruncateForLog(reasoning, maxReasoningLen)
	}

	return &Result{
		Score:          score,
		RecommendApply: score >= m.threshold,
		Reasoning:      reasoning,
		MissingSkills:  dedupeSkills(shape.MissingSkills),
	}
}

func errorResult(err error) *Result {
	return &Result{
		Reasoning:     fallbackReasoning,
		MissingSkills: []string{},
		Error:         err.Error(),
		Cause:         err,
	}
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// dedupeSkills drops duplicates and blanks while preserving order.
func dedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
		if len(out) == maxMissingSkills {
			break
		}
	}
	return out
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}
