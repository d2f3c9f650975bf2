package contract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
)

// Classification label constants.
const (
	CommonValue = "Common" // Fails across many PRs
	UniqueValue = "Unique" // Specific to one PR
)

// Color variables for console output.
var (
	HighColor = color.New(color.FgRed, color.Bold) // HighColor marks failures the PR likely caused.
	LowColor  = color.New(color.FgYellow)          // LowColor marks failures seen across PRs.
	OKColor   = color.New(color.FgGreen)           // OKColor marks passing runs.
	FailColor = color.New(color.FgRed)             // FailColor marks failing runs.
)

// GetPlainLabel returns the plain text classification of a failure.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(isCommon bool) string {
	if isCommon {
		return CommonValue
	}
	return UniqueValue
}

// GetSeverityLabel returns a colored severity for console output (table).
func GetSeverityLabel(severity schema.Severity) string {
	text := string(severity)
	if severity == schema.SeverityHigh {
		return HighColor.Sprint(text)
	}
	return LowColor.Sprint(text)
}

// GetStatusLabel returns a colored smoke-test status for console output.
func GetStatusLabel(status schema.SmokeStatus) string {
	switch status {
	case schema.StatusOK:
		return OKColor.Sprint(string(status))
	case schema.StatusFail:
		return FailColor.Sprint(string(status))
	default:
		return string(status)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ConfigureLogging points logrus at w with the given level.
func ConfigureLogging(w io.Writer, level log.Level) {
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: level < log.DebugLevel,
	})
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.WithError(err).Warn(msg)
}

// GetDBFilePath returns the path to the SQLite DB file for fact storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prdash.db"
	}
	return filepath.Join(homeDir, ".prdash.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
