package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/career-copilot/internal/job"
	"github.com/spigell/career-copilot/internal/match"
	"github.com/spigell/career-copilot/internal/pipeline"
	"github.com/spigell/career-copilot/internal/salary"
)

func scoredRow(id string, score int) *pipeline.Row {
	return &pipeline.Row{
		Record: &job.Record{ListingID: id, Title: "Engineer", Company: "Acme"},
		Match:  &match.Result{Score: score, RecommendApply: score >= 70, Reasoning: "ok"},
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	t.Parallel()

	failed := &pipeline.Row{
		Record: &job.Record{ListingID: "failed", Title: "Engineer", Company: "Acme"},
		Match:  &match.Result{Error: "capability call timed out"},
	}
	malformed := &pipeline.Row{
		Record: &job.Record{ListingID: "malformed"},
		Error:  "title or company is required",
	}

	rows := []*pipeline.Row{
		scoredRow("mid", 60),
		failed,
		scoredRow("top", 95),
		malformed,
		scoredRow("low", 10),
	}

	ranked := Rank(rows)

	want := []string{"top", "mid", "low", "failed", "malformed"}
	for i, id := range want {
		if ranked[i].Record.ListingID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].Record.ListingID)
		}
	}

	if rows[0].Record.ListingID != "mid" {
		t.Fatal("Rank must not mutate the input slice")
	}
}

func TestRankStableWithinEqualScores(t *testing.T) {
	t.Parallel()

	rows := []*pipeline.Row{
		scoredRow("first", 80),
		scoredRow("second", 80),
		scoredRow("third", 80),
	}

	ranked := Rank(rows)

	for i, id := range []string{"first", "second", "third"} {
		if ranked[i].Record.ListingID != id {
			t.Fatalf("equal scores must keep batch order, position %d got %s", i, ranked[i].Record.ListingID)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	lo, hi := 90000.0, 110000.0
	full := &pipeline.Row{
		Record: &job.Record{
			ListingID: "full-1",
			Title:     "Go Engineer",
			Company:   "Acme",
			Location:  "Toronto, ON",
			RawSalary: "$90,000 - $110,000 a year",
			URL:       "https://example.com/jobs/1",
		},
		Fingerprint: "abc123",
		IsRepost:    true,
		Salary: &salary.Normalization{
			Min: &lo, Max: &hi, Currency: "CAD",
			Period: salary.PeriodYear, Confidence: 1.0, Source: salary.SourceRule,
		},
		Match: &match.Result{
			Score: 88, RecommendApply: true,
			Reasoning:     "Solid overlap.",
			MissingSkills: []string{"Kubernetes", "Terraform"},
		},
	}

	path := filepath.Join(t.TempDir(), "report.csv")
	if err := WriteCSV(path, []*pipeline.Row{scoredRow("low-1", 20), full}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer file.Close()

	lines, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if len(lines[0]) != len(csvHeader) {
		t.Fatalf("header width mismatch: %d vs %d", len(lines[0]), len(csvHeader))
	}

	top := lines[1]
	if top[0] != "full-1" {
		t.Fatalf("highest score must come first, got %s", top[0])
	}

	byName := make(map[string]string, len(csvHeader))
	for i, name := range csvHeader {
		byName[name] = top[i]
	}

	checks := map[string]string{
		"Reposted":          "true",
		"Min Salary":        "90000",
		"Max Salary":        "110000",
		"Currency":          "CAD",
		"Period":            "year",
		"Salary Source":     "rule",
		"Salary Confidence": "1.00",
		"Match Score":       "88",
		"Recommend Apply":   "true",
		"Missing Skills":    "Kubernetes; Terraform",
	}
	for name, want := range checks {
		if byName[name] != want {
			t.Errorf("column %q: expected %q, got %q", name, want, byName[name])
		}
	}
}
