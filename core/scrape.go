package core

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	log "github.com/sirupsen/logrus"
)

// ScrapeOptions selects the PRs a scrape visits.
type ScrapeOptions struct {
	State    string
	MaxPRs   int
	PRNumber int            // Scrape only this PR when set
	Params   map[string]any // Recorded with the scrape run
}

// Scraper pulls PRs and their comments one at a time and stores the facts found.
// Requests are spaced by a fixed delay to stay well under the GitHub rate limit.
type Scraper struct {
	source contract.PullSource
	facts  contract.FactStore
	owner  string
	repo   string
	delay  time.Duration

	// wait blocks between requests; replaced in tests
	wait func(ctx context.Context, d time.Duration) error
}

// NewScraper creates a scraper for one repository.
func NewScraper(source contract.PullSource, facts contract.FactStore, owner, repo string, delay time.Duration) *Scraper {
	return &Scraper{
		source: source,
		facts:  facts,
		owner:  owner,
		repo:   repo,
		delay:  delay,
		wait:   sleepContext,
	}
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run scrapes the selected PRs and records a scrape run.
// A PR that fails is logged and skipped; only listing errors and cancellation abort the run.
func (s *Scraper) Run(ctx context.Context, opts ScrapeOptions) (schema.IngestStats, error) {
	var stats schema.IngestStats

	runID, err := s.facts.BeginScrape(ctx, time.Now(), opts.Params)
	if err != nil {
		contract.LogWarn("Scrape run tracking initialization failed", err)
	} else if runID > 0 {
		ctx = withRunID(ctx, runID)
	}

	prs, err := s.selectPullRequests(ctx, opts)
	if err == nil {
		log.WithFields(log.Fields{"repo": s.owner + "/" + s.repo, "prs": len(prs)}).Info("Scraping pull requests")
		err = s.scrapeAll(ctx, prs, &stats)
	}

	if runID > 0 {
		// Close the run even after cancellation
		if endErr := s.facts.EndScrape(context.WithoutCancel(ctx), runID, time.Now(), stats.PRs); endErr != nil {
			contract.LogWarn("Failed to finalize scrape run tracking", endErr)
		}
	}
	return stats, err
}

// selectPullRequests lists the PRs to visit.
func (s *Scraper) selectPullRequests(ctx context.Context, opts ScrapeOptions) ([]schema.PullRequest, error) {
	if opts.PRNumber > 0 {
		pr, err := s.source.GetPullRequest(ctx, opts.PRNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch PR #%d: %w", opts.PRNumber, err)
		}
		return []schema.PullRequest{pr}, nil
	}
	prs, err := s.source.ListPullRequests(ctx, opts.State, opts.MaxPRs)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s pull requests: %w", opts.State, err)
	}
	return prs, nil
}

// scrapeAll visits PRs sequentially.
func (s *Scraper) scrapeAll(ctx context.Context, prs []schema.PullRequest, stats *schema.IngestStats) error {
	for i, pr := range prs {
		if i > 0 {
			if err := s.wait(ctx, s.delay); err != nil {
				return err
			}
		}

		prStats, err := s.scrapePR(ctx, pr)
		stats.Add(prStats)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.FailedPRs++
			loggerFor(ctx, pr.Number).WithError(err).Warn("Skipping pull request")
			continue
		}
		loggerFor(ctx, pr.Number).WithFields(log.Fields{
			"comments":    prStats.Comments,
			"smoke_tests": prStats.SmokeTests,
			"coverage":    prStats.Coverage,
		}).Debug("Scraped pull request")
	}
	return nil
}

// scrapePR fetches approvals and comments of one PR and stores them.
func (s *Scraper) scrapePR(ctx context.Context, pr schema.PullRequest) (schema.IngestStats, error) {
	approvals, err := s.source.CountApprovals(ctx, pr.Number)
	if err != nil {
		return schema.IngestStats{}, fmt.Errorf("failed to count approvals: %w", err)
	}
	pr.Approvals = approvals

	if err := s.wait(ctx, s.delay); err != nil {
		return schema.IngestStats{}, err
	}

	comments, err := s.source.ListComments(ctx, pr.Number)
	if err != nil {
		return schema.IngestStats{}, fmt.Errorf("failed to list comments: %w", err)
	}

	ref := schema.PullRef{Owner: s.owner, Repo: s.repo, Number: pr.Number}
	return IngestPR(ctx, s.facts, ref, pr, comments)
}
