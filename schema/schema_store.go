package schema

import "time"

// Summary is the headline rollup shown by the stats views.
type Summary struct {
	PRsTracked          int     `json:"prs_tracked"`
	SmokeRuns           int     `json:"smoke_runs"`
	PassedRuns          int     `json:"passed_runs"`
	FailedRuns          int     `json:"failed_runs"`
	FailingRecords      int     `json:"failing_records"`
	DistinctFailedTests int     `json:"distinct_failed_tests"`
	PRsWithCoverage     int     `json:"prs_with_coverage"`
	AverageCoverage     float64 `json:"average_coverage"`
}

// HypervisorStat counts smoke runs per hypervisor and version.
type HypervisorStat struct {
	Hypervisor string `json:"hypervisor"`
	Version    string `json:"version"`
	Runs       int    `json:"runs"`
	OKRuns     int    `json:"ok_runs"`
	FailRuns   int    `json:"fail_runs"`
}

// FrequentFailure is a test name ranked by how many PRs it failed in.
type FrequentFailure struct {
	TestName    string   `json:"test_name"`
	PRCount     int      `json:"pr_count"`
	Occurrences int      `json:"occurrences"`
	LastSeen    string   `json:"last_seen"`
	IsCommon    bool     `json:"is_common"`
	Severity    Severity `json:"severity"`
}

// PROverview is one line of the tracked PR listing.
type PROverview struct {
	PullRequest
	SmokeRuns    int          `json:"smoke_runs"`
	LatestStatus *SmokeStatus `json:"latest_status,omitempty"`
	Coverage     *float64     `json:"coverage,omitempty"`
}

// Dashboard bundles the aggregated views.
type Dashboard struct {
	Summary          Summary           `json:"summary"`
	Hypervisors      []HypervisorStat  `json:"hypervisors"`
	FrequentFailures []FrequentFailure `json:"frequent_failures"`
}

// ScrapeRunRecord represents a row from the scrape_runs table.
type ScrapeRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	PRsProcessed  int32
	ConfigParams  *string
}
