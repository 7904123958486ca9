package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/pipeline"
)

// PostgresSink upserts finished rows into a match_results table keyed by
// listing id, so repeated runs refresh scores instead of duplicating rows.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresSink(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &PostgresSink{pool: pool, logger: logger}, nil
}

// Store persists all rows. Per-row failures are logged and counted, they do
// not abort the batch.
func (s *PostgresSink) Store(ctx context.Context, rows []*pipeline.Row) error {
	var stored, failed int
	for _, row := range rows {
		if err := s.storeRow(ctx, row); err != nil {
			failed++
			s.logger.Warn("failed to store row",
				zap.String("listing_id", row.Record.ListingID),
				zap.Error(err),
			)
			continue
		}
		stored++
	}

	s.logger.Info("rows persisted to postgres",
		zap.Int("stored", stored),
		zap.Int("failed", failed),
	)

	if stored == 0 && failed > 0 {
		return fmt.Errorf("all %d rows failed to store", failed)
	}
	return nil
}

func (s *PostgresSink) storeRow(ctx context.Context, row *pipeline.Row) error {
	rec := row.Record

	var minSalary, maxSalary *float64
	var currency, period, salarySource string
	var confidence float64
	if row.Salary != nil {
		minSalary = row.Salary.Min
		maxSalary = row.Salary.Max
		currency = row.Salary.Currency
		period = string(row.Salary.Period)
		salarySource = string(row.Salary.Source)
		confidence = row.Salary.Confidence
	}

	var score *int
	var recommend bool
	var reasoning, matchErr string
	var missing []string
	if row.Match != nil {
		if row.Match.Scored() {
			v := row.Match.Score
			score = &v
			recommend = row.Match.RecommendApply
		}
		reasoning = row.Match.Reasoning
		missing = row.Match.MissingSkills
		matchErr = row.Match.Error
	}

	var postedAt any
	if rec.HasPostedAt() {
		postedAt = rec.PostedAt
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_results (
			listing_id, fingerprint, title, company, location, url,
			posted_at, is_repost, previously_seen,
			raw_salary, min_salary, max_salary, currency, period, salary_source, salary_confidence,
			score, recommend_apply, reasoning, missing_skills, match_error, row_error
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		ON CONFLICT (listing_id) DO UPDATE SET
			is_repost = EXCLUDED.is_repost,
			previously_seen = EXCLUDED.previously_seen,
			min_salary = EXCLUDED.min_salary,
			max_salary = EXCLUDED.max_salary,
			currency = EXCLUDED.currency,
			period = EXCLUDED.period,
			salary_source = EXCLUDED.salary_source,
			salary_confidence = EXCLUDED.salary_confidence,
			score = EXCLUDED.score,
			recommend_apply = EXCLUDED.recommend_apply,
			reasoning = EXCLUDED.reasoning,
			missing_skills = EXCLUDED.missing_skills,
			match_error = EXCLUDED.match_error,
			row_error = EXCLUDED.row_error`,
		rec.ListingID, row.Fingerprint, rec.Title, rec.Company, rec.Location, rec.URL,
		postedAt, row.IsRepost, row.PreviouslySeen,
		rec.RawSalary, minSalary, maxSalary, currency, period, salarySource, confidence,
		score, recommend, reasoning, missing, matchErr, row.Error,
	)
	return err
}

// Close releases the connection pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}
