package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/parquet"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// PrintFailures outputs the classified failures of a PR, dispatching based on the output format configured.
func PrintFailures(results []schema.ClassifiedFailure, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONFailures(w, results)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFailures(w, results, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteClassifiedFailuresParquet(parquet.ConvertClassifiedFailures(results), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFailuresTable(w, results, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeFailuresTable generates and writes the human-readable table.
func writeFailuresTable(w io.Writer, results []schema.ClassifiedFailure, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if len(results) == 0 {
		if _, err := fmt.Fprintf(w, "No failing tests stored for PR #%d\n", cfg.PRNumber); err != nil {
			return err
		}
		return writeFooter(w, cfg, "Classification completed", duration)
	}

	headers := []string{"Test", "Result", "Hypervisor", "Version", "Date", "Time", "Other PRs", "Class", "Severity"}
	nameWidth := maxColumnWidth(cfg, 95)

	common := 0
	data := make([][]string, 0, len(results))
	for _, r := range results {
		if r.IsCommon {
			common++
		}
		data = append(data, []string{
			contract.TruncateText(r.TestName, nameWidth),
			string(r.Result),
			r.Hypervisor,
			orDash(r.HypervisorVersion),
			orDash(r.TestDate),
			optionalFloat(r.TimeSeconds, fmtFloat),
			fmt.Sprintf("%d", r.OccurrenceCount),
			contract.GetPlainLabel(r.IsCommon),
			contract.GetSeverityLabel(r.Severity),
		})
	}

	if err := renderTable(w, headers, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d failing tests of PR #%d (%d common, %d unique)\n",
		len(results), cfg.PRNumber, common, len(results)-common); err != nil {
		return err
	}
	return writeFooter(w, cfg, "Classification completed", duration)
}
