package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		Output:     output,
		OutputFile: filepath.Join(t.TempDir(), "out"),
		Precision:  1,
		Width:      200,
		PRNumber:   9001,
		DBBackend:  schema.SQLiteBackend,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func sampleFailures() []schema.ClassifiedFailure {
	seconds := 12.5
	return []schema.ClassifiedFailure{
		{
			TestFailureRecord: schema.TestFailureRecord{
				PRNumber: 9001, TestName: "test_01_deploy_vm", Result: schema.ResultError,
				Hypervisor: "KVM", HypervisorVersion: "ol8", TestDate: "2024-05-03", TimeSeconds: &seconds,
			},
			OccurrenceCount: 4, IsCommon: true, Severity: schema.SeverityLow,
		},
		{
			TestFailureRecord: schema.TestFailureRecord{
				PRNumber: 9001, TestName: "test_02_snapshot", Result: schema.ResultFailure,
				Hypervisor: "XCP-ng", TestDate: "2024-05-03",
			},
			OccurrenceCount: 0, IsCommon: false, Severity: schema.SeverityHigh,
		},
	}
}

func TestPrintFailures(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintFailures(sampleFailures(), cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "test_01_deploy_vm")
		assert.Contains(t, out, "12.5")
		assert.Contains(t, out, "Common")
		assert.Contains(t, out, "Unique")
		assert.Contains(t, out, "Showing 2 failing tests of PR #9001 (1 common, 1 unique)")
		assert.Contains(t, out, "Store backend: sqlite")
	})

	t.Run("text without failures", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintFailures(nil, cfg, time.Second))
		assert.Contains(t, readOutput(t, cfg), "No failing tests stored for PR #9001")
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintFailures(sampleFailures(), cfg, time.Second))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "Common", decoded[0]["classification"])
		assert.Equal(t, "test_01_deploy_vm", decoded[0]["test_name"])
		assert.Equal(t, true, decoded[0]["is_common"])
		assert.Equal(t, "high", decoded[1]["severity"])
	})

	t.Run("json without failures is an empty array", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintFailures(nil, cfg, time.Second))
		assert.Equal(t, "[]\n", readOutput(t, cfg))
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut)
		require.NoError(t, PrintFailures(sampleFailures(), cfg, time.Second))
		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "pr_number,test_name,result"))
		assert.Equal(t, "9001,test_01_deploy_vm,Error,KVM,ol8,2024-05-03,12.5,4,Common,low,,", lines[1])
		assert.Equal(t, "9001,test_02_snapshot,Failure,XCP-ng,,2024-05-03,,0,Unique,high,,", lines[2])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut)
		require.NoError(t, PrintFailures(sampleFailures(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

func sampleDashboard() schema.Dashboard {
	return schema.Dashboard{
		Summary: schema.Summary{
			PRsTracked: 12, SmokeRuns: 20, PassedRuns: 15, FailedRuns: 5,
			FailingRecords: 9, DistinctFailedTests: 4, PRsWithCoverage: 3, AverageCoverage: 81.25,
		},
		Hypervisors: []schema.HypervisorStat{
			{Hypervisor: "KVM", Version: "ol8", Runs: 10, OKRuns: 9, FailRuns: 1},
			{Hypervisor: "VMware", Runs: 4, OKRuns: 2, FailRuns: 2},
		},
		FrequentFailures: []schema.FrequentFailure{
			{TestName: "test_01_deploy_vm", PRCount: 5, Occurrences: 7, LastSeen: "2024-05-03", IsCommon: true, Severity: schema.SeverityLow},
		},
	}
}

func TestPrintDashboard(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintDashboard(sampleDashboard(), cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "PRs tracked")
		assert.Contains(t, out, "75.0%", "overall pass rate")
		assert.Contains(t, out, "81.2%")
		assert.Contains(t, out, "90.0%", "KVM pass rate")
		assert.Contains(t, out, "Most frequent failures")
		assert.Contains(t, out, "test_01_deploy_vm")
	})

	t.Run("text with an empty store", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintDashboard(schema.Dashboard{}, cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "Summary")
		assert.NotContains(t, out, "Most frequent failures")
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintDashboard(schema.Dashboard{}, cfg, time.Second))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, []any{}, decoded["hypervisors"])
		assert.Equal(t, []any{}, decoded["frequent_failures"])
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut)
		require.NoError(t, PrintDashboard(sampleDashboard(), cfg, time.Second))
		assert.Equal(t,
			"rank,test_name,pr_count,occurrences,last_seen,classification,severity\n1,test_01_deploy_vm,5,7,2024-05-03,Common,low\n",
			readOutput(t, cfg))
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut)
		assert.ErrorIs(t, PrintDashboard(sampleDashboard(), cfg, time.Second), errParquetUnsupported)
	})
}

func TestPrintPullRequests(t *testing.T) {
	status := schema.StatusFail
	coverage := 85.23
	prs := []schema.PROverview{
		{
			PullRequest: schema.PullRequest{
				Number: 9001, Title: "Fix snapshot cleanup, again", Author: "alice", State: "open",
				URL: "https://github.com/apache/cloudstack/pull/9001", Approvals: 2,
				UpdatedAt: time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC),
			},
			SmokeRuns: 3, LatestStatus: &status, Coverage: &coverage,
		},
		{PullRequest: schema.PullRequest{Number: 9002, State: "closed"}},
	}

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintPullRequests(prs, cfg, time.Second))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "#9001")
		assert.Contains(t, out, "85.2%")
		assert.Contains(t, out, "FAIL")
		assert.Contains(t, out, "2024-05-03")
		assert.Contains(t, out, "Showing 2 tracked PRs")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut)
		require.NoError(t, PrintPullRequests(prs, cfg, time.Second))
		lines := strings.Split(strings.TrimSpace(readOutput(t, cfg)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, `9001,"Fix snapshot cleanup, again",alice,open,2,3,FAIL,85.2,2024-05-03T10:00:00Z,https://github.com/apache/cloudstack/pull/9001`, lines[1])
		assert.Equal(t, "9002,,,closed,0,0,,,,", lines[2])
	})

	t.Run("json with nothing tracked", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintPullRequests(nil, cfg, time.Second))
		assert.Equal(t, "[]\n", readOutput(t, cfg))
	})
}

func TestPrintScrapeSummary(t *testing.T) {
	stats := schema.IngestStats{PRs: 10, FailedPRs: 1, Comments: 120, Ignored: 80, SmokeTests: 25, TestRows: 40, Coverage: 9}

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut)
		require.NoError(t, PrintScrapeSummary(stats, cfg, time.Minute))
		out := readOutput(t, cfg)
		assert.Contains(t, out, "PRs scraped")
		assert.Contains(t, out, "120")
		assert.Contains(t, out, "Scrape completed in 1m0s")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut)
		require.NoError(t, PrintScrapeSummary(stats, cfg, time.Minute))
		out := readOutput(t, cfg)
		assert.True(t, strings.HasPrefix(out, "metric,value\nprs_scraped,10\nprs_skipped,1\n"))
		assert.Contains(t, out, "coverage_reports_stored,9\n")
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintScrapeSummary(stats, cfg, time.Minute))
		var decoded schema.IngestStats
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, stats, decoded)
	})
}

func TestPrintParsedComment(t *testing.T) {
	seconds := 1.5
	parsed := schema.ParsedComment{
		Kind: "smoke",
		SmokeTest: &schema.SmokeTestFact{
			PRNumber: 9001, Hypervisor: "XCP-ng", Version: "8.2", Passed: 90, Errors: 3, Total: 93,
			Status: schema.StatusFail, FailedTests: []string{"test_foo", "test_bar"},
		},
		SmokeOutcome: "complete",
		TestRows: []schema.TestRow{
			{Name: "test_foo", Result: schema.ResultError, TimeSeconds: &seconds, File: "test_foo.py"},
			{Name: "test_skip_me", Result: schema.ResultSkip},
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, _ := createFormatters(1)
		require.NoError(t, writeParsedComment(&buf, parsed, fmtFloat))
		out := buf.String()
		assert.Contains(t, out, "Comment kind: smoke")
		assert.Contains(t, out, "Smoke test (complete)")
		assert.Contains(t, out, "test_foo, test_bar")
		assert.Contains(t, out, "test_skip_me")
		assert.NotContains(t, out, "Coverage (")
	})

	t.Run("text coverage", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, _ := createFormatters(2)
		cov := schema.ParsedComment{
			Kind:            "coverage",
			Coverage:        &schema.CoverageFact{Percentage: 85.23, Change: -0.5},
			CoverageOutcome: "complete",
		}
		require.NoError(t, writeParsedComment(&buf, cov, fmtFloat))
		out := buf.String()
		assert.Contains(t, out, "85.23%")
		assert.Contains(t, out, "-0.50%")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut)
		require.NoError(t, PrintParsedComment(parsed, cfg))
		assert.Equal(t, "test_name,result,time_seconds,test_file\ntest_foo,Error,1.5,test_foo.py\ntest_skip_me,Skip,,\n", readOutput(t, cfg))
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		require.NoError(t, PrintParsedComment(schema.ParsedComment{Kind: "none"}, cfg))
		assert.Equal(t, "{\n  \"kind\": \"none\"\n}\n", readOutput(t, cfg))
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut)
		assert.ErrorIs(t, PrintParsedComment(parsed, cfg), errParquetUnsupported)
	})
}
