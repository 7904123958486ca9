// Package salary converts free-text compensation snippets into structured,
// comparable values. Parsing cascades cheapest-first: an empty-input short
// circuit, a deterministic rule pass, then an injected LLM extraction
// capability whose output is clamped and validated before use.
package salary

import "strings"

// Period is the pay period a salary figure refers to.
type Period string

const (
	PeriodYear    Period = "year"
	PeriodMonth   Period = "month"
	PeriodHour    Period = "hour"
	PeriodUnknown Period = "unknown"
)

// Source records which cascade step produced the normalization.
type Source string

const (
	SourceRule Source = "rule"
	SourceLLM  Source = "llm"
	SourceNone Source = "none"
)

// Normalization is the structured form of one posting's salary text.
// Invariants (enforced by the normalizer, callers can rely on them):
// Min <= Max whenever both are set, and Confidence < 1.0 whenever the period
// or currency is unknown.
type Normalization struct {
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Period     Period   `json:"period"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
}

// Empty is the zero-information result: no amounts, no currency, unknown
// period, confidence 0. It is what empty input and failed extraction
// degrade to.
func Empty() *Normalization {
	return &Normalization{Period: PeriodUnknown, Confidence: 0, Source: SourceNone}
}

// MapPeriod maps free-form period tokens onto the closed Period enum.
// Anything unmatched is unknown.
func MapPeriod(token string) Period {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "year", "yr", "annual", "annually", "annum", "yearly", "per year", "a year":
		return PeriodYear
	case "month", "mo", "monthly", "per month", "a month":
		return PeriodMonth
	case "hour", "hr", "hourly", "per hour", "an hour":
		return PeriodHour
	default:
		return PeriodUnknown
	}
}
