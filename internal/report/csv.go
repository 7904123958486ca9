// Package report hands finished pipeline rows to persistence. The core does
// not mandate a format; the writers here cover the CSV report the original
// workflow consumed and a Postgres table for longer-term tracking.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spigell/career-copilot/internal/pipeline"
)

var csvHeader = []string{
	"Listing ID", "Job Title", "Company", "Location", "Posted Ago", "Posted Time",
	"Reposted", "Previously Seen",
	"Salary", "Min Salary", "Max Salary", "Currency", "Period", "Salary Source", "Salary Confidence",
	"Match Score", "Recommend Apply", "Reasoning", "Missing Skills", "Match Error",
	"URL", "Row Error",
}

// WriteCSV writes rows to path, ranked by match score descending so the most
// actionable recommendations come first. Unscored rows sort last.
func WriteCSV(path string, rows []*pipeline.Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %q: %w", path, err)
	}
	defer file.Close()

	ranked := Rank(rows)

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range ranked {
		if err := w.Write(csvRow(row)); err != nil {
			return fmt.Errorf("writing row %s: %w", row.Record.ListingID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// Rank orders rows by score descending, error-marked and malformed rows
// last, preserving batch order within equal scores.
func Rank(rows []*pipeline.Row) []*pipeline.Row {
	ranked := make([]*pipeline.Row, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(a, b int) bool {
		return rankScore(ranked[a]) > rankScore(ranked[b])
	})
	return ranked
}

func rankScore(row *pipeline.Row) int {
	if row.Error != "" || row.Match == nil || !row.Match.Scored() {
		return -1
	}
	return row.Match.Score
}

func csvRow(row *pipeline.Row) []string {
	rec := row.Record

	postedTime := ""
	if rec.HasPostedAt() {
		postedTime = rec.PostedAt.Format("2006-01-02 15:04")
	}

	var minSalary, maxSalary, currency, period, salarySource, confidence string
	if row.Salary != nil {
		minSalary = formatAmount(row.Salary.Min)
		maxSalary = formatAmount(row.Salary.Max)
		currency = row.Salary.Currency
		period = string(row.Salary.Period)
		salarySource = string(row.Salary.Source)
		confidence = strconv.FormatFloat(row.Salary.Confidence, 'f', 2, 64)
	}

	var score, recommend, reasoning, missing, matchErr string
	if row.Match != nil {
		if row.Match.Scored() {
			score = strconv.Itoa(row.Match.Score)
			recommend = strconv.FormatBool(row.Match.RecommendApply)
		}
		reasoning = row.Match.Reasoning
		missing = strings.Join(row.Match.MissingSkills, "; ")
		matchErr = row.Match.Error
	}

	return []string{
		rec.ListingID, rec.Title, rec.Company, rec.Location, rec.PostedAgo, postedTime,
		strconv.FormatBool(row.IsRepost), strconv.FormatBool(row.PreviouslySeen),
		rec.RawSalary, minSalary, maxSalary, currency, period, salarySource, confidence,
		score, recommend, reasoning, missing, matchErr,
		rec.URL, row.Error,
	}
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
