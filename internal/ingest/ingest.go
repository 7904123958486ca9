// Package ingest provides the sources that feed job records into the
// pipeline. The core only sees the Source contract; the concrete readers
// here cover the browser layer's JSONL exports and saved board pages.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/career-copilot/internal/job"
)

// Source delivers a batch of job records. Listing ids must be stable within
// a run.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*job.Records, error)
}

// DeriveListingID builds a stable id for sources that do not provide a
// canonical one. It is intentionally position-independent so re-reading the
// same export yields the same ids.
func DeriveListingID(title, company, url string) string {
	raw := strings.ToLower(strings.TrimSpace(url))
	if raw == "" {
		raw = strings.ToLower(strings.TrimSpace(title) + "|" + strings.TrimSpace(company))
	}
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum[:12])
}

var postedAgoRe = regexp.MustCompile(`(?i)(\d+)\s*(minute|hour|day|week|month)s?\s+ago`)

// ParsePostedAgo converts relative posting text ("3 days ago", "just
// posted") into an absolute timestamp anchored at now. A zero time is
// returned when the text is unparseable; the dedup stage treats that as
// most recent.
func ParsePostedAgo(text string, now time.Time) time.Time {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return time.Time{}
	}
	if strings.Contains(t, "just posted") || strings.Contains(t, "just now") || strings.Contains(t, "today") {
		return now
	}

	m := postedAgoRe.FindStringSubmatch(t)
	if m == nil {
		return time.Time{}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}
	}

	switch m[2] {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "month":
		return now.AddDate(0, -n, 0)
	default:
		return time.Time{}
	}
}
