package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// writeCSVFrequentFailures writes the ranked failure list, the one tabular part of the dashboard.
func writeCSVFrequentFailures(w io.Writer, failures []schema.FrequentFailure) error {
	header := []string{"rank", "test_name", "pr_count", "occurrences", "last_seen", "classification", "severity"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range failures {
			row := []string{
				strconv.Itoa(i + 1),
				f.TestName,
				strconv.Itoa(f.PRCount),
				strconv.Itoa(f.Occurrences),
				f.LastSeen,
				contract.GetPlainLabel(f.IsCommon),
				string(f.Severity),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSVPullRequests writes one row per tracked PR. Absent signals are empty cells.
func writeCSVPullRequests(w io.Writer, prs []schema.PROverview, fmtFloat func(float64) string) error {
	header := []string{"number", "title", "author", "state", "approvals", "smoke_runs", "latest_status", "coverage", "updated_at", "url"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, pr := range prs {
			latest := ""
			if pr.LatestStatus != nil {
				latest = string(*pr.LatestStatus)
			}
			coverage := ""
			if pr.Coverage != nil {
				coverage = fmtFloat(*pr.Coverage)
			}
			updated := ""
			if !pr.UpdatedAt.IsZero() {
				updated = pr.UpdatedAt.UTC().Format(contract.DateTimeFormat)
			}
			row := []string{
				strconv.Itoa(pr.Number),
				pr.Title,
				pr.Author,
				pr.State,
				strconv.Itoa(pr.Approvals),
				strconv.Itoa(pr.SmokeRuns),
				latest,
				coverage,
				updated,
				pr.URL,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSVScrapeSummary writes the scrape counters as snake_case metric rows.
func writeCSVScrapeSummary(w io.Writer, stats schema.IngestStats) error {
	return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
		for _, counter := range scrapeCounters(stats) {
			name := strings.ReplaceAll(strings.ToLower(counter[0]), " ", "_")
			if err := cw.Write([]string{name, counter[1]}); err != nil {
				return err
			}
		}
		return nil
	})
}
