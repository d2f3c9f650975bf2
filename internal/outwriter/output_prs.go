package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// PrintPullRequests outputs the tracked PRs, dispatching based on the output format configured.
func PrintPullRequests(prs []schema.PROverview, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	if prs == nil {
		prs = []schema.PROverview{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, prs)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVPullRequests(w, prs, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePullRequestsTable(w, prs, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writePullRequestsTable generates and writes the human-readable table.
func writePullRequestsTable(w io.Writer, prs []schema.PROverview, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	titleWidth := maxColumnWidth(cfg, 100)
	var data [][]string
	for _, pr := range prs {
		latest := "-"
		if pr.LatestStatus != nil {
			latest = contract.GetStatusLabel(*pr.LatestStatus)
		}
		coverage := "-"
		if pr.Coverage != nil {
			coverage = fmtFloat(*pr.Coverage) + "%"
		}
		updated := "-"
		if !pr.UpdatedAt.IsZero() {
			updated = schema.FormatTestDate(pr.UpdatedAt)
		}
		data = append(data, []string{
			"#" + strconv.Itoa(pr.Number),
			contract.TruncateText(orDash(pr.Title), titleWidth),
			orDash(pr.Author),
			orDash(pr.State),
			strconv.Itoa(pr.Approvals),
			strconv.Itoa(pr.SmokeRuns),
			latest,
			coverage,
			updated,
		})
	}

	if err := renderTable(w, []string{"PR", "Title", "Author", "State", "Approvals", "Smoke Runs", "Latest", "Coverage", "Updated"}, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d tracked PRs\n", len(prs)); err != nil {
		return err
	}
	return writeFooter(w, cfg, "Listing completed", duration)
}
