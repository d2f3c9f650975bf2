// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// FailureCounter answers the one question the failure classifier needs.
// Implementations must be read-only and safe for concurrent callers.
type FailureCounter interface {
	// CountOtherFailingPRs returns the number of distinct PRs other than excludePR
	// that have a failing record for testName. Names are compared exactly.
	CountOtherFailingPRs(ctx context.Context, testName string, excludePR int) (int, error)
}

// FactStore defines the persistence operations for PR quality facts.
// This allows mocking the store for testing.
type FactStore interface {
	FailureCounter

	// --- Writes (all upserts on the natural key) ---

	// UpsertPullRequest stores PR metadata keyed by PR number.
	UpsertPullRequest(ctx context.Context, pr schema.PullRequest) error

	// UpsertSmokeTest stores a smoke-test summary keyed by (pr, hypervisor, version, test date).
	UpsertSmokeTest(ctx context.Context, fact schema.SmokeTestFact) error

	// UpsertTestFailures stores test rows keyed by (pr, test, hypervisor, version, test date).
	UpsertTestFailures(ctx context.Context, records []schema.TestFailureRecord) error

	// UpsertCoverage stores the coverage of a PR keyed by PR number.
	UpsertCoverage(ctx context.Context, fact schema.CoverageFact) error

	// --- Scrape runs ---

	// BeginScrape creates a new scrape run and returns its unique ID.
	BeginScrape(ctx context.Context, startTime time.Time, configParams map[string]any) (int64, error)

	// EndScrape updates the scrape run with completion data.
	EndScrape(ctx context.Context, runID int64, endTime time.Time, prsProcessed int) error

	// --- Reads ---

	// GetTestFailures returns the stored test rows of a PR, or of every PR when prNumber is 0.
	// Rows of every result are returned; callers filter with IsFailing.
	GetTestFailures(ctx context.Context, prNumber int) ([]schema.TestFailureRecord, error)

	// GetSmokeTests returns the smoke-test runs of a PR, newest first.
	GetSmokeTests(ctx context.Context, prNumber int) ([]schema.SmokeTestFact, error)

	// GetCoverage returns the coverage of a PR. The bool is false when none is stored.
	GetCoverage(ctx context.Context, prNumber int) (schema.CoverageFact, bool, error)

	// ListPullRequests returns tracked PRs with their latest quality signals.
	ListPullRequests(ctx context.Context, limit int) ([]schema.PROverview, error)

	// GetSummary returns dashboard-wide counters.
	GetSummary(ctx context.Context) (schema.Summary, error)

	// GetHypervisorStats returns run counts per (hypervisor, version).
	GetHypervisorStats(ctx context.Context) ([]schema.HypervisorStat, error)

	// GetFrequentFailures returns the tests failing in the most PRs.
	GetFrequentFailures(ctx context.Context, limit int) ([]schema.FrequentFailure, error)

	// GetAllScrapeRuns returns every recorded scrape run.
	GetAllScrapeRuns(ctx context.Context) ([]schema.ScrapeRunRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for managing the fact store.
type StoreManager interface {
	GetFactStore() FactStore
}

// PullSource defines the GitHub reads needed to scrape a repository.
// This allows the pipeline to be tested without network access.
type PullSource interface {
	// ListPullRequests returns up to max PRs in the given state, most recently updated first.
	ListPullRequests(ctx context.Context, state string, maxPRs int) ([]schema.PullRequest, error)

	// GetPullRequest returns a single PR.
	GetPullRequest(ctx context.Context, number int) (schema.PullRequest, error)

	// ListComments returns every issue comment of a PR in creation order.
	ListComments(ctx context.Context, number int) ([]schema.CommentRecord, error)

	// CountApprovals returns the number of reviewers whose latest review approves the PR.
	CountApprovals(ctx context.Context, number int) (int, error)
}
