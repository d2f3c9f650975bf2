package extract

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// HeaderMatcher reports whether a line opens the table to scan.
type HeaderMatcher func(line string) bool

// strictHeader is the exact header of the per-test results table.
const strictHeader = "Test | Result | Time"

var (
	permissiveHeaderRe = regexp.MustCompile(`Test[^|]*\|.*Result`)
	timeTokenRe        = regexp.MustCompile(`[\d.]+`)
)

// StrictHeader matches the literal "Test | Result | Time" header used for test rows.
func StrictHeader(line string) bool {
	return strings.Contains(line, strictHeader)
}

// PermissiveHeader matches any line with "Test" and "Result" separated by a pipe.
// It is used when only failed test names are wanted.
func PermissiveHeader(line string) bool {
	return permissiveHeaderRe.MatchString(line)
}

// Lines yields the lines of body without their line terminators.
func Lines(body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(body, "\n") {
			if !yield(strings.TrimSuffix(line, "\r")) {
				return
			}
		}
	}
}

// ScanTable yields the trimmed cells of each data row of the first table whose
// header satisfies isHeader. Separator rows and rows with fewer than minCols
// cells are skipped. The scan stops at the first blank line after the header.
func ScanTable(lines iter.Seq[string], isHeader HeaderMatcher, minCols int) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		inTable := false
		for line := range lines {
			if !inTable {
				inTable = isHeader(line)
				continue
			}

			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				return
			}
			if isSeparatorRow(trimmed) {
				continue
			}

			cells := splitRow(trimmed)
			if len(cells) < minCols {
				continue
			}
			if !yield(cells) {
				return
			}
		}
	}
}

// isSeparatorRow matches markdown separators such as "---|---" or "|:---|---:|".
func isSeparatorRow(trimmed string) bool {
	rest := strings.TrimLeft(strings.TrimPrefix(trimmed, "|"), " :")
	return strings.HasPrefix(rest, "---")
}

// splitRow splits a table row on pipes. One leading and one trailing pipe are
// treated as borders, not as empty cells.
func splitRow(trimmed string) []string {
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	cells := strings.Split(trimmed, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// StripBackticks removes inline code markers around a cell, "`Error`" becomes "Error".
func StripBackticks(cell string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), "`"))
}

// ParseTimeCell returns the first numeric token of a Time cell.
// A cell without a parseable number has no time, which is not the same as zero.
func ParseTimeCell(cell string) (float64, bool) {
	tok := timeTokenRe.FindString(cell)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractTestRows parses the "Test | Result | Time" table of a comment.
// The optional fourth column holds the test file. Rows with an unknown result are dropped.
func ExtractTestRows(body string) []schema.TestRow {
	var rows []schema.TestRow
	for cells := range ScanTable(Lines(body), StrictHeader, 3) {
		result, ok := schema.ParseTestResult(StripBackticks(cells[1]))
		if !ok || cells[0] == "" {
			continue
		}

		row := schema.TestRow{
			Name:   cells[0],
			Result: result,
		}
		if secs, ok := ParseTimeCell(cells[2]); ok {
			row.TimeSeconds = &secs
		}
		if len(cells) > 3 {
			row.File = cells[3]
		}
		rows = append(rows, row)
	}
	return rows
}
