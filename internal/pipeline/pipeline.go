// Package pipeline wires the batch stages together: duplicate detection over
// the whole batch first, then per-record salary normalization, cost guarding
// and resume matching, concurrent up to a configured limit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/spigell/career-copilot/internal/costguard"
	"github.com/spigell/career-copilot/internal/dedup"
	"github.com/spigell/career-copilot/internal/eligibility"
	"github.com/spigell/career-copilot/internal/job"
	"github.com/spigell/career-copilot/internal/match"
	"github.com/spigell/career-copilot/internal/salary"
)

// Config is the pipeline's explicit configuration. Thresholds, budgets and
// retry settings live with the components that consume them; the pipeline
// itself only gates fan-out.
type Config struct {
	// ConcurrencyLimit caps simultaneous in-flight records. Values below 1
	// fall back to sequential processing.
	ConcurrencyLimit int
}

func (c *Config) Validate() error {
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = 1
	}
	return nil
}

// SeenStore remembers fingerprints across runs so earlier publications of a
// job can be flagged even when the current batch only carries the repost.
// Implementations are optional and best-effort.
type SeenStore interface {
	Seen(ctx context.Context, fingerprint string) bool
	Mark(ctx context.Context, fingerprint, listingID string) error
}

// Row is the aggregator-facing output for one input record. Exactly one row
// is produced per completed record; rows for malformed input carry Error and
// no derived fields.
type Row struct {
	Record         *job.Record           `json:"record"`
	Fingerprint    string                `json:"fingerprint,omitempty"`
	IsRepost       bool                  `json:"is_repost"`
	PreviouslySeen bool                  `json:"previously_seen,omitempty"`
	Salary         *salary.Normalization `json:"salary,omitempty"`
	Match          *match.Result         `json:"match,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// Result is a completed (possibly canceled) batch.
type Result struct {
	Rows   []*Row
	Groups []dedup.Group
	// Excluded counts records dropped by the eligibility filters before any
	// paid capability call.
	Excluded int
	// Skipped counts records excluded because cancellation interrupted their
	// processing. Completed rows are always flushed.
	Skipped int
}

// Pipeline processes batches of job records against one resume.
type Pipeline struct {
	cfg        Config
	normalizer *salary.Normalizer
	guard      *costguard.Guard
	matcher    *match.Matcher
	filters    []eligibility.Filter
	seen       SeenStore
	logger     *zap.Logger
}

// Deps aggregates the stage implementations the pipeline runs.
type Deps struct {
	Normalizer *salary.Normalizer
	Guard      *costguard.Guard
	Matcher    *match.Matcher
	// Filters is optional; without it every well-formed record is processed.
	Filters []eligibility.Filter
	// Seen is optional; without it cross-run repost flagging is skipped.
	Seen   SeenStore
	Logger *zap.Logger
}

func New(cfg Config, deps Deps) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Normalizer == nil {
		return nil, fmt.Errorf("salary normalizer is required")
	}
	if deps.Guard == nil {
		return nil, fmt.Errorf("cost guard is required")
	}
	if deps.Matcher == nil {
		return nil, fmt.Errorf("matcher is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		cfg:        cfg,
		normalizer: deps.Normalizer,
		guard:      deps.Guard,
		matcher:    deps.Matcher,
		filters:    deps.Filters,
		seen:       deps.Seen,
		logger:     logger,
	}, nil
}

// Run processes the batch. Duplicate grouping is a batch barrier: every
// record's repost flag is fixed before any record is finalized. The
// eligibility filters then narrow the batch before any paid call, and the
// surviving records run concurrently, gated by the semaphore. Cancellation
// flushes rows that finished and skips the rest; no single record failure
// aborts the batch.
func (p *Pipeline) Run(ctx context.Context, records *job.Records, resume *job.Resume) (*Result, error) {
	if resume == nil {
		return nil, fmt.Errorf("resume is required")
	}

	batch := records.Items
	assignments, groups := dedup.Detect(batch)

	p.logger.Info("duplicate detection completed",
		zap.Int("records", len(batch)),
		zap.Int("groups", len(groups)),
	)

	keep := p.filterEligible(batch, assignments)

	rows := make([]*Row, len(batch))
	sem := semaphore.NewWeighted(int64(p.cfg.ConcurrencyLimit))
	var wg sync.WaitGroup

	result := &Result{Groups: groups}
	for i := range batch {
		if !keep[i] {
			result.Excluded++
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// Canceled while waiting for a slot: stop launching. Records
			// already in flight still finish and are flushed.
			break
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)
			p.process(ctx, batch[idx], assignments[idx], resume, rows, idx)
		}(i)
	}

	wg.Wait()

	for i, row := range rows {
		if row == nil {
			if !keep[i] {
				continue
			}
			result.Skipped++
			p.logger.Debug("record excluded by cancellation",
				zap.String("listing_id", batch[i].ListingID),
			)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	p.logger.Info("batch completed",
		zap.Int("rows", len(result.Rows)),
		zap.Int("excluded", result.Excluded),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// filterEligible runs the configured filters over the well-formed part of
// the batch. Malformed records bypass filtering so they still surface as
// error rows.
func (p *Pipeline) filterEligible(batch []*job.Record, assignments []dedup.Assignment) []bool {
	keep := make([]bool, len(batch))
	if len(p.filters) == 0 {
		for i := range keep {
			keep[i] = true
		}
		return keep
	}

	candidates := make([]eligibility.Candidate, 0, len(batch))
	for i, rec := range batch {
		if assignments[i].Err != nil {
			keep[i] = true
			continue
		}
		candidates = append(candidates, eligibility.Candidate{
			Index:    i,
			Record:   rec,
			IsRepost: assignments[i].IsRepost,
		})
	}

	for _, c := range eligibility.Run(p.logger, p.filters, candidates) {
		keep[c.Index] = true
	}
	return keep
}

func (p *Pipeline) process(ctx context.Context, rec *job.Record, assignment dedup.Assignment, resume *job.Resume, rows []*Row, idx int) {
	if assignment.Err != nil {
		// Malformed input is reported per record, the batch continues.
		p.logger.Warn("malformed record",
			zap.String("listing_id", rec.ListingID),
			zap.Error(assignment.Err),
		)
		rows[idx] = &Row{Record: rec, Error: assignment.Err.Error()}
		return
	}

	row := &Row{
		Record:      rec,
		Fingerprint: assignment.Fingerprint,
		IsRepost:    assignment.IsRepost,
	}

	if p.seen != nil {
		row.PreviouslySeen = p.seen.Seen(ctx, assignment.Fingerprint)
	}

	row.Salary = p.normalizer.Normalize(ctx, rec.RawSalary, rec.Location)

	guarded, summarized := p.guard.Bound(ctx, rec.Description)
	if summarized {
		p.logger.Debug("description reduced to budget",
			zap.String("listing_id", rec.ListingID),
			zap.Int("budget", p.guard.Budget()),
		)
	}

	row.Match = p.matcher.Evaluate(ctx, resume, rec, guarded)

	if p.seen != nil && !row.PreviouslySeen {
		if err := p.seen.Mark(ctx, assignment.Fingerprint, rec.ListingID); err != nil {
			p.logger.Warn("failed to mark fingerprint as seen",
				zap.String("listing_id", rec.ListingID),
				zap.Error(err),
			)
		}
	}

	// Only a record whose scoring was itself interrupted by cancellation is
	// excluded. A row that finished before cancellation landed is flushed.
	if ctx.Err() != nil && row.Match != nil && errors.Is(row.Match.Cause, ctx.Err()) {
		return
	}
	rows[idx] = row
}
