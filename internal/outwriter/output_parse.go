package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// PrintParsedComment outputs what the extractors found in one comment.
func PrintParsedComment(parsed schema.ParsedComment, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, parsed)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVTestRows(w, parsed.TestRows, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParsedComment(w, parsed, fmtFloat)
		}, "Wrote table")
	}
}

// writeParsedComment renders every extracted fact as its own block.
func writeParsedComment(w io.Writer, parsed schema.ParsedComment, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "Comment kind: %s\n", parsed.Kind); err != nil {
		return err
	}

	if parsed.SmokeOutcome != "" {
		if _, err := fmt.Fprintf(w, "\nSmoke test (%s)\n", parsed.SmokeOutcome); err != nil {
			return err
		}
	}
	if st := parsed.SmokeTest; st != nil {
		failed := "-"
		if len(st.FailedTests) > 0 {
			failed = strings.Join(st.FailedTests, ", ")
		}
		rows := [][]string{
			{"Hypervisor", st.Hypervisor},
			{"Version", orDash(st.Version)},
			{"Status", contract.GetStatusLabel(st.Status)},
			{"Passed", strconv.Itoa(st.Passed)},
			{"Errors", strconv.Itoa(st.Errors)},
			{"Skipped", strconv.Itoa(st.Skipped)},
			{"Total", strconv.Itoa(st.Total)},
			{"Failed tests", failed},
			{"Logs", orDash(st.LogsURL)},
		}
		if err := renderTable(w, []string{"Field", "Value"}, rows); err != nil {
			return err
		}
	}

	if len(parsed.TestRows) > 0 {
		var rows [][]string
		for _, r := range parsed.TestRows {
			rows = append(rows, []string{r.Name, string(r.Result), optionalFloat(r.TimeSeconds, fmtFloat), orDash(r.File)})
		}
		if err := renderTable(w, []string{"Test", "Result", "Time", "File"}, rows); err != nil {
			return err
		}
	}

	if parsed.CoverageOutcome != "" {
		if _, err := fmt.Fprintf(w, "\nCoverage (%s)\n", parsed.CoverageOutcome); err != nil {
			return err
		}
	}
	if cov := parsed.Coverage; cov != nil {
		rows := [][]string{
			{"Coverage", fmtFloat(cov.Percentage) + "%"},
			{"Change", fmt.Sprintf("%+.*f%%", 2, cov.Change)},
			{"Report", orDash(cov.URL)},
		}
		if err := renderTable(w, []string{"Field", "Value"}, rows); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVTestRows writes the parsed table rows of a smoke-test comment.
func writeCSVTestRows(w io.Writer, rows []schema.TestRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, []string{"test_name", "result", "time_seconds", "test_file"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			timeSeconds := ""
			if r.TimeSeconds != nil {
				timeSeconds = fmtFloat(*r.TimeSeconds)
			}
			if err := cw.Write([]string{r.Name, string(r.Result), timeSeconds, r.File}); err != nil {
				return err
			}
		}
		return nil
	})
}
