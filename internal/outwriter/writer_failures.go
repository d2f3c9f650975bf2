package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// writeJSONFailures writes the classified failures with their plain label.
func writeJSONFailures(w io.Writer, results []schema.ClassifiedFailure) error {
	type JSONFailure struct {
		Classification string `json:"classification"`
		schema.ClassifiedFailure
	}

	output := make([]JSONFailure, len(results))
	for i, r := range results {
		output[i] = JSONFailure{
			Classification:    contract.GetPlainLabel(r.IsCommon),
			ClassifiedFailure: r,
		}
	}
	return writeJSON(w, output)
}

// writeCSVFailures writes one row per classified failure.
func writeCSVFailures(w io.Writer, results []schema.ClassifiedFailure, fmtFloat func(float64) string) error {
	header := []string{
		"pr_number",
		"test_name",
		"result",
		"hypervisor",
		"hypervisor_version",
		"test_date",
		"time_seconds",
		"occurrence_count",
		"classification",
		"severity",
		"test_file",
		"logs_url",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			timeSeconds := ""
			if r.TimeSeconds != nil {
				timeSeconds = fmtFloat(*r.TimeSeconds)
			}
			row := []string{
				strconv.Itoa(r.PRNumber),
				r.TestName,
				string(r.Result),
				r.Hypervisor,
				r.HypervisorVersion,
				r.TestDate,
				timeSeconds,
				strconv.Itoa(r.OccurrenceCount),
				contract.GetPlainLabel(r.IsCommon),
				string(r.Severity),
				r.TestFile,
				r.LogsURL,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
