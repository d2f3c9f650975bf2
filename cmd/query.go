package cmd

import (
	"github.com/cloudstack-dashboard/prdash/core"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/spf13/cobra"
)

// failuresCmd classifies the failing tests of one PR.
var failuresCmd = &cobra.Command{
	Use:   "failures <pr>",
	Short: "Show the failing smoke tests of a PR, common or unique",
	Long: `List every failing test stored for a pull request.

Each failure is compared with the other PRs in the fact store:
- Common: the test also fails in at least 2 other PRs (low severity, likely environmental)
- Unique: the test fails in fewer PRs (high severity, likely caused by this PR)

Examples:
  # Triage a PR
  prdash failures 9001

  # Feed the classification to another tool
  prdash failures 9001 --output json

  # Keep a columnar copy
  prdash failures 9001 --output parquet --output-file pr9001.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFailures(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot classify failures", err)
		}
	},
}

// statsCmd prints the dashboard rollups.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored smoke-test results",
	Long: `Show dashboard-wide rollups of the fact store.

Displays:
- PRs tracked, smoke runs and their pass rate, average coverage
- Smoke runs per hypervisor and version
- The tests failing in the most PRs (use --limit to change how many)

Examples:
  # Show the dashboard
  prdash stats

  # Top 50 frequent failures as CSV
  prdash stats --limit 50 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot compute stats", err)
		}
	},
}

// prsCmd lists tracked PRs.
var prsCmd = &cobra.Command{
	Use:   "prs",
	Short: "List tracked PRs with their latest quality signals",
	Long: `List the pull requests in the fact store, newest first.

Each PR shows its approvals, number of smoke runs, the status of its latest run
and its coverage.

Examples:
  prdash prs
  prdash prs --limit 100 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePullRequests(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list pull requests", err)
		}
	},
}
