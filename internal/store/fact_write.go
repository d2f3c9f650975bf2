package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudstack-dashboard/prdash/schema"
)

var (
	prInfoCols = []string{"pr_number", "title", "author", "state", "url", "approvals", "updated_at"}
	prInfoKeys = []string{"pr_number"}

	smokeTestCols = []string{
		"pr_number", "hypervisor", "hypervisor_version", "test_date",
		"passed", "errors", "skipped", "total", "status", "failed_tests", "logs_url", "created_at",
	}
	smokeTestKeys = []string{"pr_number", "hypervisor", "hypervisor_version", "test_date"}

	coverageCols = []string{"pr_number", "percentage", "coverage_change", "url", "updated_at"}
	coverageKeys = []string{"pr_number"}

	testFailureCols = []string{
		"pr_number", "test_name", "hypervisor", "hypervisor_version", "test_date",
		"test_file", "result", "time_seconds", "logs_url",
	}
	testFailureKeys = []string{"pr_number", "test_name", "hypervisor", "hypervisor_version", "test_date"}
)

// UpsertPullRequest stores PR metadata keyed by PR number.
func (fs *FactStoreImpl) UpsertPullRequest(ctx context.Context, pr schema.PullRequest) error {
	if fs.isNoop() {
		return nil
	}

	query := upsertQuery(fs.backend, prInfoTable, prInfoCols, prInfoKeys)
	err := fs.execContext(ctx, query,
		pr.Number, pr.Title, pr.Author, pr.State, pr.URL, pr.Approvals, formatTime(pr.UpdatedAt, fs.backend))
	if err != nil {
		return fmt.Errorf("failed to upsert PR #%d: %w", pr.Number, err)
	}
	return nil
}

// UpsertSmokeTest stores a smoke-test summary keyed by (pr, hypervisor, version, test date).
func (fs *FactStoreImpl) UpsertSmokeTest(ctx context.Context, fact schema.SmokeTestFact) error {
	if fs.isNoop() {
		return nil
	}

	var failedTests any
	if fact.FailedTests != nil {
		encoded, err := json.Marshal(fact.FailedTests)
		if err != nil {
			return fmt.Errorf("failed to marshal failed tests: %w", err)
		}
		failedTests = string(encoded)
	}

	query := upsertQuery(fs.backend, smokeTestsTable, smokeTestCols, smokeTestKeys)
	err := fs.execContext(ctx, query,
		fact.PRNumber, fact.Hypervisor, fact.Version, fact.TestDate(),
		fact.Passed, fact.Errors, fact.Skipped, fact.Total, string(fact.Status),
		failedTests, fact.LogsURL, formatTime(fact.CreatedAt, fs.backend))
	if err != nil {
		return fmt.Errorf("failed to upsert smoke test for PR #%d on %s: %w", fact.PRNumber, fact.Hypervisor, err)
	}
	return nil
}

// UpsertCoverage stores the coverage of a PR keyed by PR number.
func (fs *FactStoreImpl) UpsertCoverage(ctx context.Context, fact schema.CoverageFact) error {
	if fs.isNoop() {
		return nil
	}

	query := upsertQuery(fs.backend, coverageTable, coverageCols, coverageKeys)
	err := fs.execContext(ctx, query,
		fact.PRNumber, fact.Percentage, fact.Change, fact.URL, formatTime(fact.UpdatedAt, fs.backend))
	if err != nil {
		return fmt.Errorf("failed to upsert coverage for PR #%d: %w", fact.PRNumber, err)
	}
	return nil
}

// UpsertTestFailures stores test rows keyed by (pr, test, hypervisor, version, test date).
// All rows are written in one transaction.
func (fs *FactStoreImpl) UpsertTestFailures(ctx context.Context, records []schema.TestFailureRecord) error {
	if fs.isNoop() || len(records) == 0 {
		return nil
	}

	tx, err := fs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery(fs.backend, testFailuresTable, testFailureCols, testFailureKeys))
	if err != nil {
		return fmt.Errorf("failed to prepare test failure upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		var secs sql.NullFloat64
		if r.TimeSeconds != nil {
			secs = sql.NullFloat64{Float64: *r.TimeSeconds, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.PRNumber, r.TestName, r.Hypervisor, r.HypervisorVersion, r.TestDate,
			r.TestFile, string(r.Result), secs, r.LogsURL); err != nil {
			return fmt.Errorf("failed to upsert test %s for PR #%d: %w", r.TestName, r.PRNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit test failures: %w", err)
	}
	return nil
}

// BeginScrape creates a new scrape run and returns its unique ID.
func (fs *FactStoreImpl) BeginScrape(ctx context.Context, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if fs.isNoop() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var runID int64
	switch fs.backend {
	case schema.PostgreSQLBackend:
		query := fs.q(`INSERT INTO %s (start_time, config_params) VALUES (?, ?) RETURNING run_id`, scrapeRunsTable)
		err = fs.db.QueryRowContext(ctx, query, formatTime(startTime, fs.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fs.q(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, scrapeRunsTable)
		var result sql.Result
		result, err = fs.db.ExecContext(ctx, query, formatTime(startTime, fs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert scrape run: %w", err)
	}

	return runID, nil
}

// EndScrape updates the scrape run with completion data.
func (fs *FactStoreImpl) EndScrape(ctx context.Context, runID int64, endTime time.Time, prsProcessed int) error {
	// Skip for NoneBackend
	if fs.isNoop() {
		return nil
	}

	// First, get the start_time to calculate duration
	var start dbTime
	row := fs.db.QueryRowContext(ctx, fs.q(`SELECT start_time FROM %s WHERE run_id = ?`, scrapeRunsTable), runID)
	if err := row.Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for scrape run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(start.Time).Milliseconds()

	query := fs.q(`UPDATE %s SET end_time = ?, run_duration_ms = ?, prs_processed = ? WHERE run_id = ?`, scrapeRunsTable)
	if err := fs.execContext(ctx, query, formatTime(endTime, fs.backend), durationMs, prsProcessed, runID); err != nil {
		return fmt.Errorf("failed to update scrape run: %w", err)
	}

	return nil
}
