package job

import (
	"fmt"
	"strings"
	"time"
)

// Record is a single job posting as delivered by an ingestion source.
// Records are immutable once ingested: pipeline stages derive new values
// from them but never write back.
type Record struct {
	// ListingID identifies this posting instance. Sources that provide a
	// canonical id keep it stable across reposts; otherwise the ingestion
	// adapter derives one.
	ListingID   string    `json:"listing_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	URL         string    `json:"url,omitempty"`
	PostedAgo   string    `json:"posted_ago,omitempty"`
	PostedAt    time.Time `json:"posted_at,omitempty"`
	Description string    `json:"description"`
	RawSalary   string    `json:"raw_salary,omitempty"`
}

// HasPostedAt reports whether the posting timestamp could be parsed.
// A zero time means the source only had unparseable relative text.
func (r *Record) HasPostedAt() bool {
	return !r.PostedAt.IsZero()
}

// Validate checks the fields every pipeline stage relies on. A failing
// record is reported and skipped, it never aborts a batch.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.ListingID) == "" {
		return fmt.Errorf("listing id is required")
	}
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Company) == "" {
		return fmt.Errorf("record %s: title or company is required", r.ListingID)
	}
	return nil
}

// Records is an ordered batch of postings. Order is meaningful: it is the
// ingestion order and breaks timestamp ties during repost grouping.
type Records struct {
	Items []*Record
}

func (r *Records) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

func (r *Records) Append(rec *Record) {
	r.Items = append(r.Items, rec)
}

func (r *Records) FindByListingID(id string) *Record {
	for _, rec := range r.Items {
		if rec.ListingID == id {
			return rec
		}
	}
	return nil
}

// Companies returns the distinct company names in ingestion order.
func (r *Records) Companies() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range r.Items {
		name := strings.TrimSpace(rec.Company)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
