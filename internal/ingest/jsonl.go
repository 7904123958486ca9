package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/job"
)

// JSONLSource reads records from a JSON-lines export produced by the browser
// automation layer. One posting per line; blank lines are ignored and broken
// lines are logged and skipped rather than failing the batch.
type JSONLSource struct {
	path   string
	logger *zap.Logger
	now    func() time.Time
}

func NewJSONLSource(path string, logger *zap.Logger) *JSONLSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLSource{path: path, logger: logger, now: time.Now}
}

func (s *JSONLSource) Name() string { return "jsonl" }

func (s *JSONLSource) Fetch(_ context.Context) (*job.Records, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening export %q: %w", s.path, err)
	}
	defer file.Close()

	records := &job.Records{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var rec job.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			s.logger.Warn("skipping unparseable export line",
				zap.String("path", s.path),
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}

		if rec.ListingID == "" {
			rec.ListingID = DeriveListingID(rec.Title, rec.Company, rec.URL)
		}
		if !rec.HasPostedAt() && rec.PostedAgo != "" {
			rec.PostedAt = ParsePostedAgo(rec.PostedAgo, s.now())
		}

		records.Append(&rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export %q: %w", s.path, err)
	}

	s.logger.Info("export loaded",
		zap.String("path", s.path),
		zap.Int("records", records.Len()),
	)

	return records, nil
}
