package extract

import (
	"slices"
	"testing"

	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsTable = `Smoke tests completed. 90 look OK, 3 have errors, 0 did not run
Only failed and skipped tests results shown below:

Test | Result | Time (s) | Test File
--- | --- | --- | ---
test_foo | ` + "`Error`" + ` | 1.2 | test_foo.py
test_bar | ` + "`Failure`" + ` | 0.5 | test_bar.py
test_skipped | ` + "`Skip`" + ` | --- | test_skip.py

test_after_blank | ` + "`Error`" + ` | 9.9 | ignored.py
`

func TestScanTable(t *testing.T) {
	t.Run("strict header yields rows until blank line", func(t *testing.T) {
		rows := slices.Collect(ScanTable(Lines(resultsTable), StrictHeader, 3))
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"test_foo", "`Error`", "1.2", "test_foo.py"}, rows[0])
		assert.Equal(t, "test_skipped", rows[2][0])
	})

	t.Run("no header yields nothing", func(t *testing.T) {
		rows := slices.Collect(ScanTable(Lines("test_foo | Error | 1.0\n"), StrictHeader, 3))
		assert.Empty(t, rows)
	})

	t.Run("header with zero data rows", func(t *testing.T) {
		body := "Test | Result | Time\n--- | --- | ---\n\nafterwards"
		rows := slices.Collect(ScanTable(Lines(body), StrictHeader, 3))
		assert.Empty(t, rows)
	})

	t.Run("short rows are skipped, not fatal", func(t *testing.T) {
		body := "Test | Result | Time\n---|---|---\nbroken row\ntest_a | Error | 1\n"
		rows := slices.Collect(ScanTable(Lines(body), StrictHeader, 3))
		require.Len(t, rows, 1)
		assert.Equal(t, "test_a", rows[0][0])
	})

	t.Run("bordered rows drop the outer pipes", func(t *testing.T) {
		body := "| Test | Result | Time |\n|:---|:---:|---:|\n| test_a | `Error` | 2.5 |\n"
		rows := slices.Collect(ScanTable(Lines(body), StrictHeader, 3))
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"test_a", "`Error`", "2.5"}, rows[0])
	})

	t.Run("permissive header differs from strict", func(t *testing.T) {
		body := "Test name | Result\n---|---\ntest_a | Failure\n"
		assert.Empty(t, slices.Collect(ScanTable(Lines(body), StrictHeader, 2)))
		assert.Len(t, slices.Collect(ScanTable(Lines(body), PermissiveHeader, 2)), 1)
	})

	t.Run("early stop", func(t *testing.T) {
		var seen int
		for range ScanTable(Lines(resultsTable), StrictHeader, 3) {
			seen++
			break
		}
		assert.Equal(t, 1, seen)
	})

	t.Run("windows line endings", func(t *testing.T) {
		body := "Test | Result | Time\r\n---|---|---\r\ntest_a | Error | 1\r\n\r\ntest_b | Error | 1\r\n"
		rows := slices.Collect(ScanTable(Lines(body), StrictHeader, 3))
		require.Len(t, rows, 1)
		assert.Equal(t, "1", rows[0][2])
	})
}

func TestHeaderMatchers(t *testing.T) {
	assert.True(t, StrictHeader("Test | Result | Time (s) | Test File"))
	assert.False(t, StrictHeader("Test|Result|Time"))
	assert.True(t, PermissiveHeader("Test|Result|Time"))
	assert.True(t, PermissiveHeader("| Test | Result |"))
	assert.False(t, PermissiveHeader("Test Result"))
	assert.False(t, PermissiveHeader("Result | Test"))
}

func TestParseTimeCell(t *testing.T) {
	tests := []struct {
		cell string
		want float64
		ok   bool
	}{
		{"1.2", 1.2, true},
		{"12.50s", 12.5, true},
		{"  300 ", 300, true},
		{"---", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{".", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := ParseTimeCell(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestStripBackticks(t *testing.T) {
	assert.Equal(t, "Error", StripBackticks("`Error`"))
	assert.Equal(t, "Error", StripBackticks(" ``Error`` "))
	assert.Equal(t, "Failure", StripBackticks("Failure"))
	assert.Equal(t, "", StripBackticks("``"))
}

func TestExtractTestRows(t *testing.T) {
	rows := ExtractTestRows(resultsTable)
	require.Len(t, rows, 3)

	assert.Equal(t, "test_foo", rows[0].Name)
	assert.Equal(t, schema.ResultError, rows[0].Result)
	require.NotNil(t, rows[0].TimeSeconds)
	assert.InDelta(t, 1.2, *rows[0].TimeSeconds, 1e-9)
	assert.Equal(t, "test_foo.py", rows[0].File)

	assert.Equal(t, schema.ResultFailure, rows[1].Result)

	assert.Equal(t, schema.ResultSkip, rows[2].Result)
	assert.Nil(t, rows[2].TimeSeconds, "a dash is an absent time, not zero")

	t.Run("unknown results and missing file column", func(t *testing.T) {
		body := "Test | Result | Time\n---|---|---\ntest_a | Flaky | 1\ntest_b | Success | 2\n"
		rows := ExtractTestRows(body)
		require.Len(t, rows, 1)
		assert.Equal(t, "test_b", rows[0].Name)
		assert.Equal(t, "", rows[0].File)
	})
}
