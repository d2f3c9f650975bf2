package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// PrintDashboard outputs the dashboard rollups, dispatching based on the output format configured.
func PrintDashboard(dash schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, normalizeDashboard(dash))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFrequentFailures(w, dash.FrequentFailures)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDashboardTables(w, dash, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// normalizeDashboard replaces nil slices so JSON consumers always see arrays.
func normalizeDashboard(dash schema.Dashboard) schema.Dashboard {
	if dash.Hypervisors == nil {
		dash.Hypervisors = []schema.HypervisorStat{}
	}
	if dash.FrequentFailures == nil {
		dash.FrequentFailures = []schema.FrequentFailure{}
	}
	return dash
}

// passRate renders ok/runs as a percentage.
func passRate(ok, runs int, fmtFloat func(float64) string) string {
	if runs == 0 {
		return "-"
	}
	return fmtFloat(100*float64(ok)/float64(runs)) + "%"
}

// writeDashboardTables writes the summary, hypervisor and frequent failure tables.
func writeDashboardTables(w io.Writer, dash schema.Dashboard, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	s := dash.Summary
	avgCoverage := "-"
	if s.PRsWithCoverage > 0 {
		avgCoverage = fmtFloat(s.AverageCoverage) + "%"
	}
	summary := [][]string{
		{"PRs tracked", strconv.Itoa(s.PRsTracked)},
		{"Smoke runs", strconv.Itoa(s.SmokeRuns)},
		{"Passed runs", strconv.Itoa(s.PassedRuns)},
		{"Failed runs", strconv.Itoa(s.FailedRuns)},
		{"Pass rate", passRate(s.PassedRuns, s.SmokeRuns, fmtFloat)},
		{"Failing records", strconv.Itoa(s.FailingRecords)},
		{"Distinct failed tests", strconv.Itoa(s.DistinctFailedTests)},
		{"PRs with coverage", strconv.Itoa(s.PRsWithCoverage)},
		{"Average coverage", avgCoverage},
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if err := renderTable(w, []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	if len(dash.Hypervisors) > 0 {
		var rows [][]string
		for _, h := range dash.Hypervisors {
			rows = append(rows, []string{
				h.Hypervisor,
				orDash(h.Version),
				strconv.Itoa(h.Runs),
				strconv.Itoa(h.OKRuns),
				strconv.Itoa(h.FailRuns),
				passRate(h.OKRuns, h.Runs, fmtFloat),
			})
		}
		if _, err := fmt.Fprintln(w, "\nSmoke runs by hypervisor"); err != nil {
			return err
		}
		if err := renderTable(w, []string{"Hypervisor", "Version", "Runs", "OK", "Fail", "Pass Rate"}, rows); err != nil {
			return err
		}
	}

	if len(dash.FrequentFailures) > 0 {
		nameWidth := maxColumnWidth(cfg, 70)
		var rows [][]string
		for i, f := range dash.FrequentFailures {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				contract.TruncateText(f.TestName, nameWidth),
				strconv.Itoa(f.PRCount),
				strconv.Itoa(f.Occurrences),
				orDash(f.LastSeen),
				contract.GetPlainLabel(f.IsCommon),
				contract.GetSeverityLabel(f.Severity),
			})
		}
		if _, err := fmt.Fprintln(w, "\nMost frequent failures"); err != nil {
			return err
		}
		if err := renderTable(w, []string{"Rank", "Test", "PRs", "Occurrences", "Last Seen", "Class", "Severity"}, rows); err != nil {
			return err
		}
	}

	return writeFooter(w, cfg, "Aggregation completed", duration)
}

// PrintScrapeSummary outputs the counters of a scrape, dispatching based on the output format configured.
func PrintScrapeSummary(stats schema.IngestStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVScrapeSummary(w, stats)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := renderTable(w, []string{"Counter", "Value"}, scrapeCounters(stats)); err != nil {
				return err
			}
			return writeFooter(w, cfg, "Scrape completed", duration)
		}, "Wrote table")
	}
}

// scrapeCounters lists the stats in display order.
func scrapeCounters(stats schema.IngestStats) [][]string {
	return [][]string{
		{"PRs scraped", strconv.Itoa(stats.PRs)},
		{"PRs skipped", strconv.Itoa(stats.FailedPRs)},
		{"Comments read", strconv.Itoa(stats.Comments)},
		{"Comments ignored", strconv.Itoa(stats.Ignored)},
		{"Smoke tests stored", strconv.Itoa(stats.SmokeTests)},
		{"Test rows stored", strconv.Itoa(stats.TestRows)},
		{"Coverage reports stored", strconv.Itoa(stats.Coverage)},
	}
}
