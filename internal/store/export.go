package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/parquet"
)

// Suffixes appended to the --output-file prefix for each exported table.
const (
	smokeTestsSuffix   = ".smoke_tests.parquet"
	testFailuresSuffix = ".test_failures.parquet"
	scrapeRunsSuffix   = ".scrape_runs.parquet"
)

// ExecuteExport writes every stored smoke test, test row and scrape run to Parquet files
// named after outputFile. Progress is reported on w.
func ExecuteExport(ctx context.Context, w io.Writer, facts contract.FactStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := facts.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalPRs == 0 && status.TotalRuns == 0 {
		return errors.New("no stored data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Tracked PRs: %d\n", status.TotalPRs)

	smokeTests, err := facts.GetSmokeTests(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve smoke tests: %w", err)
	}
	testRows, err := facts.GetTestFailures(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve test failures: %w", err)
	}
	scrapeRuns, err := facts.GetAllScrapeRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve scrape runs: %w", err)
	}

	smokeFile := outputFile + smokeTestsSuffix
	if err := parquet.WriteSmokeTestsParquet(parquet.ConvertSmokeTests(smokeTests), smokeFile); err != nil {
		return fmt.Errorf("failed to write smoke tests: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d smoke tests to: %s\n", len(smokeTests), smokeFile)

	failuresFile := outputFile + testFailuresSuffix
	if err := parquet.WriteTestFailuresParquet(parquet.ConvertTestFailures(testRows), failuresFile); err != nil {
		return fmt.Errorf("failed to write test failures: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d test rows to: %s\n", len(testRows), failuresFile)

	runsFile := outputFile + scrapeRunsSuffix
	if err := parquet.WriteScrapeRunsParquet(parquet.ConvertScrapeRuns(scrapeRuns), runsFile); err != nil {
		return fmt.Errorf("failed to write scrape runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d scrape runs to: %s\n", len(scrapeRuns), runsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be loaded with DuckDB, Spark or pyarrow.")
	return nil
}
