// Package parquet provides data structures and functions for exporting PR quality
// facts to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/parquet-go/parquet-go"
)

// SmokeTest represents one smoke-test run of a PR on a hypervisor.
// This struct maps to the pr_smoke_tests database table.
type SmokeTest struct {
	PRNumber          int32     `parquet:"pr_number,snappy"`
	Hypervisor        string    `parquet:"hypervisor,snappy,dict"`
	HypervisorVersion string    `parquet:"hypervisor_version,snappy,dict"`
	TestDate          string    `parquet:"test_date,snappy,dict"`
	Passed            int32     `parquet:"passed,snappy"`
	Errors            int32     `parquet:"errors,snappy"`
	Skipped           int32     `parquet:"skipped,snappy"`
	Total             int32     `parquet:"total,snappy"`
	Status            string    `parquet:"status,snappy,dict"`
	FailedTests       []string  `parquet:"failed_tests,snappy"`
	LogsURL           *string   `parquet:"logs_url,optional,snappy"`
	CreatedAt         time.Time `parquet:"created_at,snappy"`
}

// TestFailure represents one row of a smoke-test results table.
// This struct maps to the test_failures database table.
type TestFailure struct {
	PRNumber          int32  `parquet:"pr_number,snappy"`
	TestName          string `parquet:"test_name,snappy,dict"`
	TestFile          string `parquet:"test_file,snappy,dict"`
	Result            string `parquet:"result,snappy,dict"`
	Hypervisor        string `parquet:"hypervisor,snappy,dict"`
	HypervisorVersion string `parquet:"hypervisor_version,snappy,dict"`
	TestDate          string `parquet:"test_date,snappy,dict"`

	// TimeSeconds is absent when the Time cell held no number
	TimeSeconds *float64 `parquet:"time_seconds,optional,snappy"`

	LogsURL *string `parquet:"logs_url,optional,snappy"`
}

// ScrapeRun represents a single scrape run with metadata.
// This struct maps to the scrape_runs database table.
type ScrapeRun struct {
	// RunID is the unique identifier for this scrape run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the scrape began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the scrape completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// PRsProcessed is the number of PRs ingested by this run
	PRsProcessed int32 `parquet:"prs_processed,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// writeParquet writes rows to a new Parquet file using struct schema inference.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row groups and writes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteSmokeTestsParquet writes smoke-test rows to a Parquet file.
func WriteSmokeTestsParquet(data []SmokeTest, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTestFailuresParquet writes test rows to a Parquet file.
func WriteTestFailuresParquet(data []TestFailure, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScrapeRunsParquet writes scrape runs to a Parquet file.
func WriteScrapeRunsParquet(data []ScrapeRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertSmokeTests converts schema.SmokeTestFact to SmokeTest for Parquet export.
func ConvertSmokeTests(facts []schema.SmokeTestFact) []SmokeTest {
	result := make([]SmokeTest, len(facts))
	for i, f := range facts {
		result[i] = SmokeTest{
			PRNumber:          int32(f.PRNumber),
			Hypervisor:        f.Hypervisor,
			HypervisorVersion: f.Version,
			TestDate:          f.TestDate(),
			Passed:            int32(f.Passed),
			Errors:            int32(f.Errors),
			Skipped:           int32(f.Skipped),
			Total:             int32(f.Total),
			Status:            string(f.Status),
			FailedTests:       f.FailedTests,
			LogsURL:           optionalString(f.LogsURL),
			CreatedAt:         f.CreatedAt,
		}
	}
	return result
}

// ConvertTestFailures converts schema.TestFailureRecord to TestFailure for Parquet export.
func ConvertTestFailures(records []schema.TestFailureRecord) []TestFailure {
	result := make([]TestFailure, len(records))
	for i, r := range records {
		result[i] = TestFailure{
			PRNumber:          int32(r.PRNumber),
			TestName:          r.TestName,
			TestFile:          r.TestFile,
			Result:            string(r.Result),
			Hypervisor:        r.Hypervisor,
			HypervisorVersion: r.HypervisorVersion,
			TestDate:          r.TestDate,
			TimeSeconds:       r.TimeSeconds,
			LogsURL:           optionalString(r.LogsURL),
		}
	}
	return result
}

// ConvertScrapeRuns converts schema.ScrapeRunRecord to ScrapeRun for Parquet export.
func ConvertScrapeRuns(records []schema.ScrapeRunRecord) []ScrapeRun {
	result := make([]ScrapeRun, len(records))
	for i, record := range records {
		result[i] = ScrapeRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			PRsProcessed:  record.PRsProcessed,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ClassifiedFailure is a failing test of a PR with its cross-PR classification.
// This struct is written by the failures command, not exported from a table.
type ClassifiedFailure struct {
	PRNumber          int32    `parquet:"pr_number,snappy"`
	TestName          string   `parquet:"test_name,snappy,dict"`
	Result            string   `parquet:"result,snappy,dict"`
	Hypervisor        string   `parquet:"hypervisor,snappy,dict"`
	HypervisorVersion string   `parquet:"hypervisor_version,snappy,dict"`
	TestDate          string   `parquet:"test_date,snappy,dict"`
	TimeSeconds       *float64 `parquet:"time_seconds,optional,snappy"`
	OccurrenceCount   int32    `parquet:"occurrence_count,snappy"`
	IsCommon          bool     `parquet:"is_common,snappy"`
	Severity          string   `parquet:"severity,snappy,dict"`
}

// WriteClassifiedFailuresParquet writes classified failures to a Parquet file.
func WriteClassifiedFailuresParquet(data []ClassifiedFailure, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertClassifiedFailures converts schema.ClassifiedFailure to ClassifiedFailure for Parquet output.
func ConvertClassifiedFailures(results []schema.ClassifiedFailure) []ClassifiedFailure {
	out := make([]ClassifiedFailure, len(results))
	for i, r := range results {
		out[i] = ClassifiedFailure{
			PRNumber:          int32(r.PRNumber),
			TestName:          r.TestName,
			Result:            string(r.Result),
			Hypervisor:        r.Hypervisor,
			HypervisorVersion: r.HypervisorVersion,
			TestDate:          r.TestDate,
			TimeSeconds:       r.TimeSeconds,
			OccurrenceCount:   int32(r.OccurrenceCount),
			IsCommon:          r.IsCommon,
			Severity:          string(r.Severity),
		}
	}
	return out
}
