package costguard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type stubSummarizer struct {
	calls   int
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _ int) (string, error) {
	s.calls++
	return s.summary, s.err
}

func TestNewRejectsNonPositiveBudget(t *testing.T) {
	t.Parallel()

	for _, budget := range []int{0, -1, -100} {
		if _, err := New(budget, nil, nil); err == nil {
			t.Errorf("budget %d: expected an error", budget)
		}
	}
}

func TestBoundPassesThroughWithinBudget(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{summary: "should not be used"}
	g, err := New(100, stub, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := strings.Repeat("a", 100)
	got, reduced := g.Bound(context.Background(), text)

	if got != text {
		t.Fatal("text within budget must pass through untouched")
	}
	if reduced {
		t.Fatal("text within budget must not be marked reduced")
	}
	if stub.calls != 0 {
		t.Fatalf("summarizer must not be called, got %d calls", stub.calls)
	}
}

func TestBoundUsesSummary(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{summary: "short summary"}
	g, err := New(50, stub, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, reduced := g.Bound(context.Background(), strings.Repeat("b", 500))

	if got != "short summary" {
		t.Fatalf("expected the summary, got %q", got)
	}
	if !reduced {
		t.Fatal("summarized text must be marked reduced")
	}
	if stub.calls != 1 {
		t.Fatalf("expected one summarizer call, got %d", stub.calls)
	}
}

func TestBoundTruncatesOnSummarizerError(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{err: errors.New("capability down")}
	g, err := New(50, stub, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, reduced := g.Bound(context.Background(), strings.Repeat("c", 500))

	if !reduced {
		t.Fatal("truncated text must be marked reduced")
	}
	if n := utf8.RuneCountInString(got); n > 50 {
		t.Fatalf("result must fit the budget, got %d runes", n)
	}
	if !strings.HasSuffix(got, "[truncated]") {
		t.Fatalf("truncated text must carry the marker, got %q", got)
	}
}

func TestBoundTruncatesWhenSummaryOvershoots(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{summary: strings.Repeat("d", 80)}
	g, err := New(50, stub, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := g.Bound(context.Background(), strings.Repeat("d", 500))

	if n := utf8.RuneCountInString(got); n > 50 {
		t.Fatalf("overshooting summary must still be bounded, got %d runes", n)
	}
}

func TestBoundWithoutSummarizer(t *testing.T) {
	t.Parallel()

	g, err := New(30, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, reduced := g.Bound(context.Background(), strings.Repeat("e", 100))

	if !reduced {
		t.Fatal("truncated text must be marked reduced")
	}
	if n := utf8.RuneCountInString(got); n > 30 {
		t.Fatalf("result must fit the budget, got %d runes", n)
	}
}

func TestBoundHoldsAcrossBudgets(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("многоязычный текст ", 40)

	for _, budget := range []int{1, 5, 12, 13, 64, 512} {
		g, err := New(budget, nil, nil)
		if err != nil {
			t.Fatalf("budget %d: unexpected error: %v", budget, err)
		}

		got, _ := g.Bound(context.Background(), text)
		if n := utf8.RuneCountInString(got); n > budget {
			t.Errorf("budget %d: result has %d runes", budget, n)
		}
	}
}
