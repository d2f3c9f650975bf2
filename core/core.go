// Package core has core logic for ingesting bot comments and classifying test failures.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/outwriter"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// ExecutorFunc defines the function signature for executing the read-side commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// errNoStore is returned when a command needs the fact store but none was initialized.
var errNoStore = errors.New("fact store is not initialized")

// factStore returns the manager's store or errNoStore.
func factStore(mgr contract.StoreManager) (contract.FactStore, error) {
	if mgr == nil {
		return nil, errNoStore
	}
	facts := mgr.GetFactStore()
	if facts == nil {
		return nil, errNoStore
	}
	return facts, nil
}

// ExecuteFailures classifies the failing tests of cfg.PRNumber and prints them.
// It serves as the main entry point for the 'failures' command.
func ExecuteFailures(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.PRNumber <= 0 {
		return errors.New("a PR number is required")
	}
	facts, err := factStore(mgr)
	if err != nil {
		return err
	}
	results, err := ClassifyFailures(ctx, facts, cfg.PRNumber)
	if err != nil {
		return err
	}
	return outwriter.PrintFailures(results, cfg, time.Since(start))
}

// ExecuteStats prints the dashboard rollups.
// It serves as the main entry point for the 'stats' command.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	facts, err := factStore(mgr)
	if err != nil {
		return err
	}
	dash, err := GetDashboard(ctx, facts, cfg.ResultLimit)
	if err != nil {
		return err
	}
	return outwriter.PrintDashboard(dash, cfg, time.Since(start))
}

// ExecutePullRequests prints the tracked PRs with their latest signals.
// It serves as the main entry point for the 'prs' command.
func ExecutePullRequests(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	facts, err := factStore(mgr)
	if err != nil {
		return err
	}
	prs, err := facts.ListPullRequests(ctx, cfg.ResultLimit)
	if err != nil {
		return err
	}
	return outwriter.PrintPullRequests(prs, cfg, time.Since(start))
}

// ExecuteScrape pulls PRs from source into the fact store and prints what was stored.
// It serves as the main entry point for the 'scrape' command.
func ExecuteScrape(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, source contract.PullSource) error {
	start := time.Now()
	facts, err := factStore(mgr)
	if err != nil {
		return err
	}
	scraper := NewScraper(source, facts, cfg.Owner, cfg.Repo, cfg.RequestDelay)
	stats, err := scraper.Run(ctx, ScrapeOptions{
		State:    cfg.State,
		MaxPRs:   cfg.MaxPRs,
		PRNumber: cfg.PRNumber,
		Params:   cfg.ScrapeParams,
	})
	if err != nil {
		return err
	}
	return outwriter.PrintScrapeSummary(stats, cfg, time.Since(start))
}

// ExecuteParse runs the extractors on one raw comment and prints the result.
// Nothing is stored. It serves as the main entry point for the 'parse' command.
func ExecuteParse(cfg *contract.Config, body, author string, meta schema.CommentMeta) error {
	comment := schema.CommentRecord{Body: body, AuthorLogin: author, CreatedAt: meta.CreatedAt}
	parsed := ParseComment(comment, meta, cfg.RepoRef(cfg.PRNumber))
	return outwriter.PrintParsedComment(parsed, cfg)
}
