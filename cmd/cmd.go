// Package cmd defines the command-line interface for prdash.
package cmd

import (
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(prsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dbCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("repo", contract.DefaultRepo, "GitHub repository as owner/name")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token (prefer the PRDASH_GITHUB_TOKEN env variable)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Fact store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (sqlite path, user:pass@tcp(host:port)/dbname, or host=... dbname=...)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scrapeCmd to Viper
	scrapeCmd.Flags().String("state", contract.DefaultPullState, "PR state to scrape: open or closed or all")
	scrapeCmd.Flags().Int("max-prs", contract.DefaultMaxPRs, "Maximum number of PRs to scrape, most recently updated first")
	scrapeCmd.Flags().String("request-delay", contract.DefaultRequestDelay.String(), "Delay between GitHub requests")
	if err := viper.BindPFlags(scrapeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scrape flags", err)
	}

	// Flags of parseCmd describe the comment, not the config, so they stay out of Viper
	parseCmd.Flags().String("author", "", "Login of the comment author (coverage is only read from codecov comments)")
	parseCmd.Flags().Int("pr", 0, "PR number the comment belongs to")
	parseCmd.Flags().String("hypervisor", "", "Hypervisor the run used, overriding the comment body")
	parseCmd.Flags().String("hypervisor-version", "", "Hypervisor version, overriding the comment body")
	parseCmd.Flags().String("logs-url", "", "Marvin logs URL, overriding the comment body")

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
