package cmd

import (
	"github.com/cloudstack-dashboard/prdash/core"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/ghclient"
	"github.com/spf13/cobra"
)

// scrapeCmd pulls PR comments from GitHub into the fact store.
var scrapeCmd = &cobra.Command{
	Use:   "scrape [pr]",
	Short: "Fetch PR comments from GitHub and store their results",
	Long: `Read the comments of pull requests and store the smoke-test and coverage
results posted by the CI bots.

PRs are visited one at a time, most recently updated first, with --request-delay
between GitHub requests. A PR that cannot be fetched is logged and skipped.
Scraping is idempotent: facts are upserted on their natural keys.

Set PRDASH_GITHUB_TOKEN to raise the GitHub rate limit from 60 to 5000 requests
per hour.

Examples:
  # Scrape the 100 most recently updated open PRs
  prdash scrape

  # Scrape closed PRs too
  prdash scrape --state all --max-prs 500

  # Refresh a single PR
  prdash scrape 9001`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		source := ghclient.NewClient(rootCtx, cfg.GitHubToken, cfg.Owner, cfg.Repo)
		if err := core.ExecuteScrape(rootCtx, cfg, storeManager, source); err != nil {
			contract.LogFatal("Cannot scrape pull requests", err)
		}
	},
}
