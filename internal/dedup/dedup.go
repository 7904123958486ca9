// Package dedup groups postings that describe the same underlying job and
// marks later publications as reposts. The detector is pure: no I/O, and the
// same batch always produces the same assignments.
package dedup

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/spigell/career-copilot/internal/job"
)

// descriptionPrefixLen bounds how much of the description feeds the
// fingerprint. Boards routinely append tracking noise to the tail, the head
// is stable across reposts.
const descriptionPrefixLen = 200

// Assignment is the detector output for a single record, index-aligned with
// the input batch.
type Assignment struct {
	Fingerprint string
	IsRepost    bool
	// Err is set for malformed records. Such records get no fingerprint and
	// never participate in grouping.
	Err error
}

// Group is the set of listing ids sharing one fingerprint. The canonical
// member is the earliest posting; it is closed once Detect returns.
type Group struct {
	Fingerprint string
	CanonicalID string
	ListingIDs  []string
}

// Fingerprint derives the content fingerprint identifying the semantic job:
// normalized company, title and the leading slice of the description.
func Fingerprint(r *job.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	desc := normalize(r.Description)
	if runes := []rune(desc); len(runes) > descriptionPrefixLen {
		desc = string(runes[:descriptionPrefixLen])
	}

	raw := normalize(r.Company) + "|" + normalize(r.Title) + "|" + desc
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum[:16]), nil
}

// Detect assigns a (fingerprint, is_repost) pair to every record in the
// batch. Grouping needs the whole batch: a record's repost flag cannot be
// decided in isolation, so callers must not finalize any record before
// Detect returns.
func Detect(records []*job.Record) ([]Assignment, []Group) {
	assignments := make([]Assignment, len(records))
	members := make(map[string][]int)
	order := make([]string, 0)

	// First pass: fingerprint and group.
	for i, rec := range records {
		fp, err := Fingerprint(rec)
		if err != nil {
			assignments[i] = Assignment{Err: err}
			continue
		}
		assignments[i] = Assignment{Fingerprint: fp}
		if _, ok := members[fp]; !ok {
			order = append(order, fp)
		}
		members[fp] = append(members[fp], i)
	}

	// Second pass: within each group the earliest posted_at wins, ties broken
	// by ingestion order. A missing timestamp sorts last so it can never
	// displace a dated canonical.
	groups := make([]Group, 0, len(order))
	for _, fp := range order {
		idxs := members[fp]
		sorted := make([]int, len(idxs))
		copy(sorted, idxs)
		sort.SliceStable(sorted, func(a, b int) bool {
			ra, rb := records[sorted[a]], records[sorted[b]]
			switch {
			case ra.HasPostedAt() && !rb.HasPostedAt():
				return true
			case !ra.HasPostedAt() && rb.HasPostedAt():
				return false
			case !ra.HasPostedAt() && !rb.HasPostedAt():
				return sorted[a] < sorted[b]
			default:
				if ra.PostedAt.Equal(rb.PostedAt) {
					return sorted[a] < sorted[b]
				}
				return ra.PostedAt.Before(rb.PostedAt)
			}
		})

		group := Group{Fingerprint: fp, CanonicalID: records[sorted[0]].ListingID}
		for rank, idx := range sorted {
			assignments[idx].IsRepost = rank > 0
			group.ListingIDs = append(group.ListingIDs, records[idx].ListingID)
		}
		groups = append(groups, group)
	}

	return assignments, groups
}

// normalize lower-cases, strips punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Punctuation and symbols are dropped entirely.
	}
	return strings.TrimSpace(b.String())
}
