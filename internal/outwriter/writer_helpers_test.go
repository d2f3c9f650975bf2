package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 1", 1, 85.234, "85.2"},
		{"precision 2", 2, 85.236, "85.24"},
		{"negative value", 2, -1.505, "-1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, intFmt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "%d", intFmt)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"test_name": "test_foo", "pr_count": 3}))
	assert.Equal(t, "{\n  \"pr_count\": 3,\n  \"test_name\": \"test_foo\"\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:     "rows",
			header:   []string{"test_name", "result"},
			rows:     [][]string{{"test_foo", "Error"}, {"test_bar", "Failure"}},
			expected: "test_name,result\ntest_foo,Error\ntest_bar,Failure\n",
		},
		{
			name:     "header only",
			header:   []string{"metric", "value"},
			expected: "metric,value\n",
		},
		{
			name:     "values with commas",
			header:   []string{"title"},
			rows:     [][]string{{"Fix VM start, stop"}},
			expected: "title\n\"Fix VM start, stop\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("row error", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error { return assert.AnError })
		assert.Equal(t, assert.AnError, err)
	})
}

func TestWriteWithFile(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(path, func(w io.Writer) error {
			_, err := w.Write([]byte("content"))
			return err
		}, "Wrote test")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content", string(content))
	})

	t.Run("writer error", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "out.txt"), func(io.Writer) error {
			return assert.AnError
		}, "Wrote test")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func(io.Writer) error {
			return nil
		}, "Wrote test")
		require.Error(t, err)
	})
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderTable(&buf, []string{"Test", "Result"}, [][]string{{"test_foo", "Error"}}))
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TEST")
	assert.Contains(t, out, "test_foo")
	assert.Contains(t, out, "Error")
}

func TestMaxColumnWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		reserved int
		expected int
	}{
		{"narrow terminal clamps to minimum", 60, 90, 15},
		{"wide terminal clamps to maximum", 300, 90, 70},
		{"in between", 130, 90, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, maxColumnWidth(cfg, tt.reserved))
		})
	}
}
