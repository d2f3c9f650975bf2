package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// failingResults are the results counted as failures.
var failingResults = []any{string(schema.ResultFailure), string(schema.ResultError)}

// CountOtherFailingPRs returns the number of distinct PRs other than excludePR
// that have a failing record for testName.
func (fs *FactStoreImpl) CountOtherFailingPRs(ctx context.Context, testName string, excludePR int) (int, error) {
	if fs.isNoop() {
		return 0, nil
	}

	query := fs.q(`SELECT COUNT(DISTINCT pr_number) FROM %s
		WHERE test_name = ? AND pr_number <> ? AND result IN (?, ?)`, testFailuresTable)
	args := append([]any{testName, excludePR}, failingResults...)

	var count int
	if err := fs.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count failing PRs for %s: %w", testName, err)
	}
	return count, nil
}

// GetTestFailures returns the stored test rows of a PR, or of every PR when prNumber is 0.
func (fs *FactStoreImpl) GetTestFailures(ctx context.Context, prNumber int) ([]schema.TestFailureRecord, error) {
	if fs.isNoop() {
		return nil, nil
	}

	query := `SELECT pr_number, test_name, hypervisor, hypervisor_version, test_date,
		test_file, result, time_seconds, logs_url FROM %s`
	var args []any
	if prNumber != 0 {
		query += ` WHERE pr_number = ?`
		args = append(args, prNumber)
	}
	query += ` ORDER BY pr_number, test_date DESC, test_name, hypervisor, hypervisor_version`

	rows, err := fs.db.QueryContext(ctx, fs.q(query, testFailuresTable), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query test failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TestFailureRecord
	for rows.Next() {
		var r schema.TestFailureRecord
		var result string
		var secs sql.NullFloat64
		if err := rows.Scan(&r.PRNumber, &r.TestName, &r.Hypervisor, &r.HypervisorVersion, &r.TestDate,
			&r.TestFile, &result, &secs, &r.LogsURL); err != nil {
			return nil, fmt.Errorf("failed to scan test failure: %w", err)
		}
		r.Result = schema.TestResult(result)
		if secs.Valid {
			v := secs.Float64
			r.TimeSeconds = &v
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test failures: %w", err)
	}
	return results, nil
}

// GetSmokeTests returns the smoke-test runs of a PR, or of every PR when prNumber is 0, newest first.
func (fs *FactStoreImpl) GetSmokeTests(ctx context.Context, prNumber int) ([]schema.SmokeTestFact, error) {
	if fs.isNoop() {
		return nil, nil
	}

	query := `SELECT pr_number, hypervisor, hypervisor_version, passed, errors, skipped, total,
		status, failed_tests, logs_url, created_at FROM %s`
	var args []any
	if prNumber != 0 {
		query += ` WHERE pr_number = ?`
		args = append(args, prNumber)
	}
	query += ` ORDER BY test_date DESC, pr_number, hypervisor, hypervisor_version`

	rows, err := fs.db.QueryContext(ctx, fs.q(query, smokeTestsTable), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query smoke tests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SmokeTestFact
	for rows.Next() {
		var f schema.SmokeTestFact
		var status string
		var failedTests sql.NullString
		var created dbTime
		if err := rows.Scan(&f.PRNumber, &f.Hypervisor, &f.Version, &f.Passed, &f.Errors, &f.Skipped, &f.Total,
			&status, &failedTests, &f.LogsURL, &created); err != nil {
			return nil, fmt.Errorf("failed to scan smoke test: %w", err)
		}
		f.Status = schema.SmokeStatus(status)
		f.CreatedAt = created.Time
		if failedTests.Valid {
			if err := json.Unmarshal([]byte(failedTests.String), &f.FailedTests); err != nil {
				return nil, fmt.Errorf("failed to decode failed tests of PR #%d: %w", f.PRNumber, err)
			}
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating smoke tests: %w", err)
	}
	return results, nil
}

// GetCoverage returns the coverage of a PR. The bool is false when none is stored.
func (fs *FactStoreImpl) GetCoverage(ctx context.Context, prNumber int) (schema.CoverageFact, bool, error) {
	if fs.isNoop() {
		return schema.CoverageFact{}, false, nil
	}

	query := fs.q(`SELECT pr_number, percentage, coverage_change, url, updated_at FROM %s WHERE pr_number = ?`, coverageTable)
	var f schema.CoverageFact
	var updated dbTime
	err := fs.db.QueryRowContext(ctx, query, prNumber).Scan(&f.PRNumber, &f.Percentage, &f.Change, &f.URL, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.CoverageFact{}, false, nil
	}
	if err != nil {
		return schema.CoverageFact{}, false, fmt.Errorf("failed to get coverage of PR #%d: %w", prNumber, err)
	}
	f.UpdatedAt = updated.Time
	return f, true, nil
}

// ListPullRequests returns tracked PRs with their latest quality signals, newest PR first.
func (fs *FactStoreImpl) ListPullRequests(ctx context.Context, limit int) ([]schema.PROverview, error) {
	if fs.isNoop() {
		return nil, nil
	}

	query := fs.q(`SELECT p.pr_number, p.title, p.author, p.state, p.url, p.approvals, p.updated_at,
		(SELECT COUNT(*) FROM %s s WHERE s.pr_number = p.pr_number) AS smoke_runs,
		(SELECT s2.status FROM %s s2 WHERE s2.pr_number = p.pr_number
			ORDER BY s2.test_date DESC, s2.created_at DESC LIMIT 1) AS latest_status,
		c.percentage
		FROM %s p LEFT JOIN %s c ON c.pr_number = p.pr_number
		ORDER BY p.pr_number DESC LIMIT ?`,
		smokeTestsTable, smokeTestsTable, prInfoTable, coverageTable)

	rows, err := fs.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PROverview
	for rows.Next() {
		var o schema.PROverview
		var updated dbTime
		var status sql.NullString
		var coverage sql.NullFloat64
		if err := rows.Scan(&o.Number, &o.Title, &o.Author, &o.State, &o.URL, &o.Approvals, &updated,
			&o.SmokeRuns, &status, &coverage); err != nil {
			return nil, fmt.Errorf("failed to scan pull request: %w", err)
		}
		o.UpdatedAt = updated.Time
		if status.Valid {
			s := schema.SmokeStatus(status.String)
			o.LatestStatus = &s
		}
		if coverage.Valid {
			c := coverage.Float64
			o.Coverage = &c
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pull requests: %w", err)
	}
	return results, nil
}

// GetSummary returns dashboard-wide counters.
func (fs *FactStoreImpl) GetSummary(ctx context.Context) (schema.Summary, error) {
	var s schema.Summary
	if fs.isNoop() {
		return s, nil
	}

	if err := fs.db.QueryRowContext(ctx, fs.q(`SELECT COUNT(*) FROM %s`, prInfoTable)).Scan(&s.PRsTracked); err != nil {
		return s, fmt.Errorf("failed to count tracked PRs: %w", err)
	}

	runsQuery := fs.q(`SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM %s`, smokeTestsTable)
	if err := fs.db.QueryRowContext(ctx, runsQuery, string(schema.StatusOK), string(schema.StatusFail)).
		Scan(&s.SmokeRuns, &s.PassedRuns, &s.FailedRuns); err != nil {
		return s, fmt.Errorf("failed to count smoke runs: %w", err)
	}

	failQuery := fs.q(`SELECT COUNT(*), COUNT(DISTINCT test_name) FROM %s WHERE result IN (?, ?)`, testFailuresTable)
	if err := fs.db.QueryRowContext(ctx, failQuery, failingResults...).
		Scan(&s.FailingRecords, &s.DistinctFailedTests); err != nil {
		return s, fmt.Errorf("failed to count test failures: %w", err)
	}

	covQuery := fs.q(`SELECT COUNT(*), COALESCE(AVG(percentage), 0) FROM %s`, coverageTable)
	if err := fs.db.QueryRowContext(ctx, covQuery).Scan(&s.PRsWithCoverage, &s.AverageCoverage); err != nil {
		return s, fmt.Errorf("failed to summarize coverage: %w", err)
	}

	return s, nil
}

// GetHypervisorStats returns run counts per (hypervisor, version), busiest first.
func (fs *FactStoreImpl) GetHypervisorStats(ctx context.Context) ([]schema.HypervisorStat, error) {
	if fs.isNoop() {
		return nil, nil
	}

	query := fs.q(`SELECT hypervisor, hypervisor_version, COUNT(*) AS runs,
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM %s GROUP BY hypervisor, hypervisor_version
		ORDER BY runs DESC, hypervisor, hypervisor_version`, smokeTestsTable)

	rows, err := fs.db.QueryContext(ctx, query, string(schema.StatusOK), string(schema.StatusFail))
	if err != nil {
		return nil, fmt.Errorf("failed to query hypervisor stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HypervisorStat
	for rows.Next() {
		var h schema.HypervisorStat
		if err := rows.Scan(&h.Hypervisor, &h.Version, &h.Runs, &h.OKRuns, &h.FailRuns); err != nil {
			return nil, fmt.Errorf("failed to scan hypervisor stat: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hypervisor stats: %w", err)
	}
	return results, nil
}

// GetFrequentFailures returns the tests failing in the most PRs.
// Classification is left to the caller.
func (fs *FactStoreImpl) GetFrequentFailures(ctx context.Context, limit int) ([]schema.FrequentFailure, error) {
	if fs.isNoop() {
		return nil, nil
	}

	query := fs.q(`SELECT test_name, COUNT(DISTINCT pr_number) AS pr_count, COUNT(*) AS occurrences,
		MAX(test_date) AS last_seen
		FROM %s WHERE result IN (?, ?)
		GROUP BY test_name
		ORDER BY pr_count DESC, occurrences DESC, test_name
		LIMIT ?`, testFailuresTable)
	args := append(append([]any{}, failingResults...), limit)

	rows, err := fs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query frequent failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FrequentFailure
	for rows.Next() {
		var f schema.FrequentFailure
		if err := rows.Scan(&f.TestName, &f.PRCount, &f.Occurrences, &f.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan frequent failure: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating frequent failures: %w", err)
	}
	return results, nil
}

// GetAllScrapeRuns retrieves all scrape runs from the store.
func (fs *FactStoreImpl) GetAllScrapeRuns(ctx context.Context) ([]schema.ScrapeRunRecord, error) {
	// Skip for NoneBackend
	if fs.isNoop() {
		return nil, nil
	}

	query := fs.q(`SELECT run_id, start_time, end_time, run_duration_ms, prs_processed, config_params
		FROM %s ORDER BY run_id`, scrapeRunsTable)

	rows, err := fs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScrapeRunRecord
	for rows.Next() {
		var record schema.ScrapeRunRecord
		var start, end dbTime
		var prs sql.NullInt32
		if err := rows.Scan(&record.RunID, &start, &end, &record.RunDurationMs, &prs, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.Ptr()
		record.PRsProcessed = prs.Int32
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scrape runs: %w", err)
	}
	return results, nil
}
