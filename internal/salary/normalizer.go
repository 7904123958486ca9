package salary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/capability"
	"github.com/spigell/career-copilot/internal/costguard"
	"github.com/spigell/career-copilot/internal/util"
)

// llmConfidenceCeiling caps model-derived results: a rule-verified parse can
// never be less trusted than an extraction capability's guess.
const llmConfidenceCeiling = 0.9

// swappedConfidenceCeiling applies when the capability returned min > max,
// a signal of unreliable extraction.
const swappedConfidenceCeiling = 0.5

// Extraction is the partial result an extraction capability returns. Every
// field is optional and untrusted until merged.
type Extraction struct {
	Min        *float64 `json:"min" mapstructure:"min"`
	Max        *float64 `json:"max" mapstructure:"max"`
	Currency   string   `json:"currency" mapstructure:"currency"`
	Period     string   `json:"period" mapstructure:"period"`
	Confidence float64  `json:"confidence" mapstructure:"confidence"`
}

// Extractor is the injected LLM path of the cascade.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Normalizer runs the cascade for one posting at a time.
type Normalizer struct {
	extractor   Extractor
	guard       *costguard.Guard
	logger      *zap.Logger
	callTimeout time.Duration
}

// NewNormalizer creates a Normalizer. The extractor may be nil, in which case
// everything the rule pass cannot handle degrades to the empty result. The
// guard bounds text before it reaches the extractor.
func NewNormalizer(extractor Extractor, guard *costguard.Guard, logger *zap.Logger, callTimeout time.Duration) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		extractor:   extractor,
		guard:       guard,
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// Normalize converts raw salary text into a Normalization. It never returns
// nil and never returns an error: capability failures degrade to the empty
// result so one bad record cannot abort a batch.
func (n *Normalizer) Normalize(ctx context.Context, rawText, location string) *Normalization {
	// Step 1: empty or clearly non-numeric input never reaches a paid call.
	if !HasDigits(rawText) {
		return Empty()
	}

	// Step 2: deterministic rules.
	if parsed, ok := ParseRules(rawText, location); ok {
		return enforce(parsed, SourceRule)
	}

	// Step 3: extraction capability.
	if n.extractor == nil {
		return Empty()
	}

	text := rawText
	if n.guard != nil {
		text, _ = n.guard.Bound(ctx, text)
	}

	var ext *Extraction
	err := capability.WithTimeout(ctx, n.callTimeout, func(callCtx context.Context) error {
		var callErr error
		ext, callErr = n.extractor.Extract(callCtx, text)
		return callErr
	})
	if err != nil || ext == nil {
		n.logger.Warn("salary extraction failed, degrading to empty result",
			zap.String("raw_salary", util.TruncateForLog(rawText, 80)),
			zap.Error(err),
		)
		return Empty()
	}

	return enforce(n.merge(ext, location), SourceLLM)
}

// merge folds the capability's partial output into a Normalization, mapping
// period tokens through the closed enum and resolving currency against the
// fixed table.
func (n *Normalizer) merge(ext *Extraction, location string) *Normalization {
	currency := ""
	if ValidCode(ext.Currency) {
		currency = ext.Currency
	} else if resolved := ResolveSymbol(ext.Currency, location); resolved != "" {
		currency = resolved
	}

	confidence := ext.Confidence
	if confidence <= 0 {
		// Capabilities that report no confidence still produced something.
		confidence = llmConfidenceCeiling
	}

	return &Normalization{
		Min:        ext.Min,
		Max:        ext.Max,
		Currency:   currency,
		Period:     MapPeriod(ext.Period),
		Confidence: confidence,
		Source:     SourceLLM,
	}
}

// enforce applies the post-hoc invariants: min <= max (swapping with a
// confidence cap when violated), the LLM confidence ceiling, and reduced
// confidence whenever period or currency stayed unknown.
func enforce(norm *Normalization, source Source) *Normalization {
	norm.Source = source

	if source == SourceLLM && norm.Confidence > llmConfidenceCeiling {
		norm.Confidence = llmConfidenceCeiling
	}

	if norm.Min != nil && norm.Max != nil && *norm.Min > *norm.Max {
		norm.Min, norm.Max = norm.Max, norm.Min
		if norm.Confidence > swappedConfidenceCeiling {
			norm.Confidence = swappedConfidenceCeiling
		}
	}

	if norm.Period == PeriodUnknown || norm.Currency == "" {
		if norm.Confidence >= 1.0 {
			norm.Confidence = llmConfidenceCeiling
		}
	}

	if norm.Confidence < 0 {
		norm.Confidence = 0
	}

	return norm
}
