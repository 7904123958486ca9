// Package eligibility narrows a deduplicated batch down to the postings
// worth spending paid capability calls on. Filters run sequentially over the
// batch; each step reports how much it dropped so a run is auditable from
// the logs alone.
package eligibility

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/job"
)

// Candidate is one batch member as the filters see it: the record plus the
// repost flag fixed by duplicate detection.
type Candidate struct {
	// Index is the record's position in the ingestion batch.
	Index    int
	Record   *job.Record
	IsRepost bool
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Filter represents a single filtering step applied to the batch.
type Filter interface {
	Name() string
	Apply(batch []Candidate) ([]Candidate, Step)
}

// Config contains the eligibility settings consumed by the filters.
type Config struct {
	// Companies keeps postings from these companies regardless of salary
	// text. Matching is case-insensitive on the trimmed name.
	Companies []string
	// RequireSalary keeps postings that carry raw salary text. Combined with
	// a company list the two conditions are OR-ed: either is enough.
	RequireSalary bool
	// IncludeReposts keeps reposts in the batch. Off by default: a repost
	// has already been scored when its canonical publication came through.
	IncludeReposts bool
}

// Steps builds the standard filter sequence for the given config.
func Steps(cfg Config) []Filter {
	return []Filter{
		newCompanySalary(cfg.Companies, cfg.RequireSalary),
		newReposts(cfg.IncludeReposts),
	}
}

// Run executes the filters sequentially and returns the surviving candidates.
func Run(logger *zap.Logger, steps []Filter, batch []Candidate) []Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		next, info := step.Apply(batch)
		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
		batch = next
	}

	return batch
}

type companySalaryFilter struct {
	companies     map[string]struct{}
	requireSalary bool
}

// newCompanySalary keeps postings from listed companies or, when the salary
// requirement is on, postings that carry salary text. With neither condition
// configured the step is a no-op.
func newCompanySalary(companies []string, requireSalary bool) Filter {
	set := make(map[string]struct{}, len(companies))
	for _, name := range companies {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return &companySalaryFilter{companies: set, requireSalary: requireSalary}
}

func (f *companySalaryFilter) Name() string { return "company-salary" }

func (f *companySalaryFilter) Apply(batch []Candidate) ([]Candidate, Step) {
	initial := len(batch)
	if len(f.companies) == 0 && !f.requireSalary {
		return batch, Step{Initial: initial, Left: initial}
	}

	kept := make([]Candidate, 0, len(batch))
	for _, c := range batch {
		if f.keeps(c.Record) {
			kept = append(kept, c)
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

func (f *companySalaryFilter) keeps(rec *job.Record) bool {
	hasSalary := strings.TrimSpace(rec.RawSalary) != ""
	switch {
	case len(f.companies) == 0:
		return hasSalary
	case f.requireSalary:
		return hasSalary || f.listed(rec.Company)
	default:
		return f.listed(rec.Company)
	}
}

func (f *companySalaryFilter) listed(company string) bool {
	_, ok := f.companies[strings.ToLower(strings.TrimSpace(company))]
	return ok
}

type repostsFilter struct {
	includeReposts bool
}

// newReposts drops reposts unless the config asks to keep them.
func newReposts(includeReposts bool) Filter {
	return &repostsFilter{includeReposts: includeReposts}
}

func (f *repostsFilter) Name() string { return "reposts" }

func (f *repostsFilter) Apply(batch []Candidate) ([]Candidate, Step) {
	initial := len(batch)
	if f.includeReposts {
		return batch, Step{Initial: initial, Left: initial}
	}

	kept := make([]Candidate, 0, len(batch))
	for _, c := range batch {
		if !c.IsRepost {
			kept = append(kept, c)
		}
	}
	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
