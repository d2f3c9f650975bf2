// Package schema has the models and enums shared by all parts of prdash.
package schema

import "time"

// PullRef identifies a pull request in a GitHub repository.
type PullRef struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

// PullRequest is the PR metadata mirrored from GitHub.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	URL       string    `json:"url"`
	Approvals int       `json:"approvals"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentRecord is one issue comment on a pull request.
type CommentRecord struct {
	ID          int64     `json:"id"`
	Body        string    `json:"body"`
	AuthorLogin string    `json:"author_login"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentMeta carries the structured fields known about a comment before its body is parsed.
// Explicit values win over anything found in the body.
type CommentMeta struct {
	PRNumber   int
	CreatedAt  time.Time
	Hypervisor string
	Version    string
	LogsURL    string
}

// SmokeTestFact is the summary of one smoke-test run reported in a comment.
// Version and LogsURL are empty when absent. FailedTests is nil when the run passed.
type SmokeTestFact struct {
	PRNumber    int         `json:"pr_number"`
	Hypervisor  string      `json:"hypervisor"`
	Version     string      `json:"version,omitempty"`
	Passed      int         `json:"passed"`
	Errors      int         `json:"errors"`
	Skipped     int         `json:"skipped"`
	Total       int         `json:"total"`
	Status      SmokeStatus `json:"status"`
	FailedTests []string    `json:"failed_tests"`
	LogsURL     string      `json:"logs_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TestDate is the day component of the natural key shared by smoke facts and test rows.
func (f SmokeTestFact) TestDate() string {
	return FormatTestDate(f.CreatedAt)
}

// CoverageFact is the code coverage reported for a PR.
type CoverageFact struct {
	PRNumber   int       `json:"pr_number"`
	Percentage float64   `json:"percentage"`
	Change     float64   `json:"change"`
	URL        string    `json:"url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TestRow is one parsed row of a "Test | Result | Time" table.
type TestRow struct {
	Name        string     `json:"name"`
	Result      TestResult `json:"result"`
	TimeSeconds *float64   `json:"time_seconds,omitempty"`
	File        string     `json:"file,omitempty"`
}

// TestFailureRecord is a stored test row, keyed by
// (PRNumber, TestName, Hypervisor, HypervisorVersion, TestDate).
type TestFailureRecord struct {
	PRNumber          int        `json:"pr_number"`
	TestName          string     `json:"test_name"`
	TestFile          string     `json:"test_file,omitempty"`
	Result            TestResult `json:"result"`
	TimeSeconds       *float64   `json:"time_seconds,omitempty"`
	Hypervisor        string     `json:"hypervisor"`
	HypervisorVersion string     `json:"hypervisor_version,omitempty"`
	TestDate          string     `json:"test_date"`
	LogsURL           string     `json:"logs_url,omitempty"`
}

// FailureClassification tells whether a failing test is shared with other PRs.
type FailureClassification struct {
	TestName        string   `json:"test_name"`
	PRNumber        int      `json:"pr_number"`
	OccurrenceCount int      `json:"occurrence_count"`
	IsCommon        bool     `json:"is_common"`
	Severity        Severity `json:"severity"`
}

// ClassifiedFailure is a failing record of a PR together with its classification.
type ClassifiedFailure struct {
	TestFailureRecord
	OccurrenceCount int      `json:"occurrence_count"`
	IsCommon        bool     `json:"is_common"`
	Severity        Severity `json:"severity"`
}

// TestDateLayout is the layout used for the test_date column.
const TestDateLayout = "2006-01-02"

// FormatTestDate renders t in UTC using TestDateLayout.
func FormatTestDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TestDateLayout)
}

// ParsedComment is what the extractors recovered from one comment.
// Outcomes are "complete", "partial" or "rejected" and are empty when the extractor did not run.
type ParsedComment struct {
	Kind            string         `json:"kind"`
	SmokeTest       *SmokeTestFact `json:"smoke_test,omitempty"`
	SmokeOutcome    string         `json:"smoke_outcome,omitempty"`
	TestRows        []TestRow      `json:"test_rows,omitempty"`
	Coverage        *CoverageFact  `json:"coverage,omitempty"`
	CoverageOutcome string         `json:"coverage_outcome,omitempty"`
}

// IngestStats counts what a scrape stored.
type IngestStats struct {
	PRs        int `json:"prs"`
	FailedPRs  int `json:"failed_prs"`
	Comments   int `json:"comments"`
	Ignored    int `json:"ignored"`
	SmokeTests int `json:"smoke_tests"`
	TestRows   int `json:"test_rows"`
	Coverage   int `json:"coverage"`
}

// Add accumulates other into s.
func (s *IngestStats) Add(other IngestStats) {
	s.PRs += other.PRs
	s.FailedPRs += other.FailedPRs
	s.Comments += other.Comments
	s.Ignored += other.Ignored
	s.SmokeTests += other.SmokeTests
	s.TestRows += other.TestRows
	s.Coverage += other.Coverage
}
