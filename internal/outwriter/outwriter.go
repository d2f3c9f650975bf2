// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
)

// errParquetUnsupported is returned by views that have no Parquet form.
var errParquetUnsupported = errors.New("parquet output is only supported by the failures and db export commands")

// writeFooter prints the timing line closing every text view.
func writeFooter(w io.Writer, cfg *contract.Config, verb string, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "%s in %v. Store backend: %s\n", verb, duration.Round(time.Millisecond), cfg.DBBackend)
	return err
}

// optionalFloat formats v or returns "-" when it is absent.
func optionalFloat(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}

// orDash returns "-" for empty strings so table cells never collapse.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
