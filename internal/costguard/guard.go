// Package costguard enforces a hard upper bound on text forwarded to paid
// capabilities. The bound holds unconditionally: a summarizer may shrink the
// text gracefully, but when it fails or overshoots, truncation closes the
// gap.
package costguard

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/util"
)

const truncationMarker = "\n[truncated]"

// Summarizer is the injected capability that condenses text toward a target
// length. It may fail or time out; the guard does not depend on it behaving.
type Summarizer interface {
	Summarize(ctx context.Context, text string, targetLen int) (string, error)
}

// Guard bounds outbound text to a fixed rune budget.
type Guard struct {
	budget     int
	summarizer Summarizer
	logger     *zap.Logger
}

// New creates a Guard. A non-positive budget is a configuration error and is
// rejected at startup, not discovered per record.
func New(budget int, summarizer Summarizer, logger *zap.Logger) (*Guard, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("cost guard budget must be positive, got %d", budget)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{budget: budget, summarizer: summarizer, logger: logger}, nil
}

// Budget returns the configured rune budget.
func (g *Guard) Budget() int { return g.budget }

// Bound returns text guaranteed to fit the budget, plus whether it was
// reduced. Text already within budget passes through untouched. Oversized
// text gets one summarization pass targeting headroom below the budget for
// prompt wrapping added downstream; if the summarizer errors or still
// overshoots, the text is hard-truncated at the boundary with a marker.
func (g *Guard) Bound(ctx context.Context, text string) (string, bool) {
	if utf8.RuneCountInString(text) <= g.budget {
		return text, false
	}

	if g.summarizer != nil {
		// Target strictly below budget. 10% headroom, at least one rune.
		target := g.budget - g.budget/10
		if target >= g.budget {
			target = g.budget - 1
		}

		summary, err := g.summarizer.Summarize(ctx, text, target)
		if err == nil && utf8.RuneCountInString(summary) <= g.budget {
			g.logger.Debug("text summarized to fit budget",
				zap.Int("original_len", utf8.RuneCountInString(text)),
				zap.Int("summary_len", utf8.RuneCountInString(summary)),
			)
			return summary, true
		}
		if err != nil {
			g.logger.Warn("summarizer failed, falling back to truncation",
				zap.Error(err),
				zap.String("input_preview", util.TruncateForLog(text, 80)),
			)
		} else {
			g.logger.Warn("summary still over budget, falling back to truncation",
				zap.Int("summary_len", utf8.RuneCountInString(summary)),
				zap.Int("budget", g.budget),
			)
		}
	}

	return truncate(text, g.budget), true
}

// truncate cuts text so that result plus marker fits limit exactly. The
// marker itself is sacrificed for budgets too small to carry it.
func truncate(text string, limit int) string {
	marker := truncationMarker
	markerLen := utf8.RuneCountInString(marker)
	if markerLen >= limit {
		marker = ""
		markerLen = 0
	}

	runes := []rune(text)
	keep := limit - markerLen
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + marker
}
