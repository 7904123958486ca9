package salary

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubExtractor struct {
	calls  int
	result *Extraction
	err    error
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (*Extraction, error) {
	s.calls++
	return s.result, s.err
}

func TestNormalizeSkipsExtractorWithoutDigits(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{result: &Extraction{Min: f(1), Max: f(2)}}
	n := NewNormalizer(stub, nil, nil, time.Second)

	for _, text := range []string{"", "Competitive salary", "DOE"} {
		got := n.Normalize(context.Background(), text, "")
		if got.Source != SourceNone || got.Confidence != 0 {
			t.Fatalf("%q: expected the empty result, got %+v", text, got)
		}
	}

	if stub.calls != 0 {
		t.Fatalf("extractor must not be called for non-numeric text, got %d calls", stub.calls)
	}
}

func TestNormalizeRulePassBypassesExtractor(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{result: &Extraction{Min: f(1), Max: f(2)}}
	n := NewNormalizer(stub, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "$90,000 - $110,000 a year", "Seattle, WA")

	if got.Source != SourceRule {
		t.Fatalf("expected rule source, got %q", got.Source)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("rule parses are fully trusted, got confidence %v", got.Confidence)
	}
	if *got.Min != 90000 || *got.Max != 110000 {
		t.Fatalf("unexpected amounts: %v - %v", *got.Min, *got.Max)
	}
	if stub.calls != 0 {
		t.Fatalf("extractor must not be called when rules match, got %d calls", stub.calls)
	}
}

func TestNormalizeClampsExtractorConfidence(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{result: &Extraction{
		Min:        f(70000),
		Max:        f(85000),
		Currency:   "USD",
		Period:     "year",
		Confidence: 0.99,
	}}
	n := NewNormalizer(stub, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "pays around 70-85k depending on experience", "")

	if got.Source != SourceLLM {
		t.Fatalf("expected llm source, got %q", got.Source)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("extractor confidence must be capped at 0.9, got %v", got.Confidence)
	}
	if got.Period != PeriodYear || got.Currency != "USD" {
		t.Fatalf("unexpected merge: %+v", got)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one extractor call, got %d", stub.calls)
	}
}

func TestNormalizeSwapsReversedExtractorRange(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{result: &Extraction{
		Min:        f(110000),
		Max:        f(90000),
		Currency:   "USD",
		Period:     "year",
		Confidence: 0.9,
	}}
	n := NewNormalizer(stub, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "comp in the 90 to 110 band", "")

	if *got.Min != 90000 || *got.Max != 110000 {
		t.Fatalf("reversed range must be swapped, got %v - %v", *got.Min, *got.Max)
	}
	if got.Confidence > 0.5 {
		t.Fatalf("swapped range caps confidence at 0.5, got %v", got.Confidence)
	}
}

func TestNormalizeUnknownFieldsReduceConfidence(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{result: &Extraction{
		Min:        f(5000),
		Max:        f(6000),
		Period:     "fortnight",
		Confidence: 1.0,
	}}
	n := NewNormalizer(stub, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "5000 to 6000 per fortnight", "")

	if got.Period != PeriodUnknown {
		t.Fatalf("unmapped period must stay unknown, got %q", got.Period)
	}
	if got.Confidence >= 1.0 {
		t.Fatalf("unknown period must keep confidence below 1.0, got %v", got.Confidence)
	}
}

func TestNormalizeDegradesOnExtractorError(t *testing.T) {
	t.Parallel()

	stub := &stubExtractor{err: errors.New("model unavailable")}
	n := NewNormalizer(stub, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "somewhere around 100k", "")

	if got.Source != SourceNone || got.Min != nil || got.Max != nil {
		t.Fatalf("extractor failure must degrade to the empty result, got %+v", got)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one extractor call, got %d", stub.calls)
	}
}

func TestNormalizeWithoutExtractor(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(nil, nil, nil, time.Second)

	got := n.Normalize(context.Background(), "around 100k total comp", "")

	if got.Source != SourceNone {
		t.Fatalf("missing extractor must degrade to the empty result, got %+v", got)
	}
}
