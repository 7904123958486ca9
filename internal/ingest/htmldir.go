package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/job"
)

// HTMLDirSource parses job cards out of board result pages saved to disk by
// the browser layer. Selectors target the generic card markup the exporter
// writes; live-site scraping robustness is explicitly out of scope.
type HTMLDirSource struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

func NewHTMLDirSource(dir string, logger *zap.Logger) *HTMLDirSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLDirSource{dir: dir, logger: logger, now: time.Now}
}

func (s *HTMLDirSource) Name() string { return "htmldir" }

func (s *HTMLDirSource) Fetch(ctx context.Context) (*job.Records, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", s.dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no saved pages under %q", s.dir)
	}

	records := &job.Records{}
	for _, path := range matches {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := s.parseFile(path, records); err != nil {
			s.logger.Warn("skipping unparseable page",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("saved pages loaded",
		zap.String("dir", s.dir),
		zap.Int("pages", len(matches)),
		zap.Int("records", records.Len()),
	)

	return records, nil
}

func (s *HTMLDirSource) parseFile(path string, records *job.Records) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(".job-card").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".job-title").Text())
		company := strings.TrimSpace(card.Find(".job-company").Text())
		if title == "" && company == "" {
			return
		}

		postedAgo := strings.TrimSpace(card.Find(".job-posted").Text())
		url, _ := card.Find("a.job-link").Attr("href")

		rec := &job.Record{
			Title:       title,
			Company:     company,
			Location:    strings.TrimSpace(card.Find(".job-location").Text()),
			URL:         url,
			PostedAgo:   postedAgo,
			PostedAt:    ParsePostedAgo(postedAgo, s.now()),
			Description: strings.TrimSpace(card.Find(".job-description").Text()),
			RawSalary:   strings.TrimSpace(card.Find(".job-salary").Text()),
		}
		if id, ok := card.Attr("data-listing-id"); ok && strings.TrimSpace(id) != "" {
			rec.ListingID = strings.TrimSpace(id)
		} else {
			rec.ListingID = DeriveListingID(rec.Title, rec.Company, rec.URL)
		}

		records.Append(rec)
	})

	return nil
}
