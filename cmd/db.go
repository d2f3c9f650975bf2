package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/store"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbConfig loads the minimal configuration needed for store maintenance.
// It validates the backend and connection string without opening the store.
func dbConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("db-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.DBBackend = backend
	cfg.DBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// dbSetupWrapper loads the store config and opens the store for status and export.
func dbSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := dbConfig(); err != nil {
		return err
	}
	if err := store.InitStore(cfg.DBBackend, cfg.DBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// dbConfigWrapper loads the store config only. Migrations and clearing must
// work on a database the store would refuse to open.
func dbConfigWrapper(_ *cobra.Command, _ []string) error {
	return dbConfig()
}

// dbCmd focused on fact store management.
//
// Note: db subcommands use minimal initialization (dbConfig) instead of
// the full sharedSetup. This avoids validating unrelated flags.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the fact store",
	Long: `Manage the database holding scraped PR facts.

Supported backends: SQLite (default, ~/.prdash.db), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show row counts and connection info
  clear   - Remove all stored facts
  migrate - Run database schema migrations
  export  - Export stored facts to Parquet

Examples:
  # Check store status
  prdash db status

  # Use PostgreSQL (set connection string via env variable)
  PRDASH_DB_BACKEND=postgresql PRDASH_DB_CONNECT="host=localhost dbname=prdash" prdash db status`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the fact store.

Displays:
- Backend type and connection status
- Row counts per table
- Time of the last scrape run

Examples:
  prdash db status`,
	PreRunE: dbSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		status, err := storeManager.GetFactStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		store.PrintStoreStatus(cmd.OutOrStdout(), status)
	},
}

// dbClearCmd clears the store.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored PR facts",
	Long: `Delete all stored PR facts from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the fact tables

Examples:
  # Export before clearing
  prdash db export --output-file backup
  prdash db clear`,
	PreRunE: dbConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ClearStore(cfg.DBBackend, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// dbMigrateCmd runs database migrations for the fact store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the fact store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  prdash db migrate

  # Rollback everything
  prdash db migrate --target-version 0`,
	PreRunE: dbConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.MigrateStore(cfg.DBBackend, cfg.DBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println("Migrations completed successfully.")
	},
}

// dbExportCmd exports stored facts to Parquet files.
var dbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored facts to Parquet for BI tools and analytics",
	Long: `Export all stored facts to Parquet format for use with analytics tools.

Writes three files named after --output-file:
  <output-file>.smoke_tests.parquet
  <output-file>.test_failures.parquet
  <output-file>.scrape_runs.parquet

Requires: --output-file parameter

Examples:
  prdash db export --output-file cloudstack
  duckdb -c "SELECT hypervisor, count(*) FROM 'cloudstack.smoke_tests.parquet' GROUP BY 1"`,
	PreRunE: dbSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.ExecuteExport(rootCtx, os.Stdout, storeManager.GetFactStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export store data", err)
		}
	},
}
