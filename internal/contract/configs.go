package contract

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/cloudstack-dashboard/prdash/schema"
	log "github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 1
	DefaultRepo         = "apache/cloudstack"
	DefaultPullState    = "open"
	DefaultMaxPRs       = 100
	DefaultRequestDelay = 500 * time.Millisecond
	DefaultLogLevel     = "info"
)

// CommonFailureThreshold is the number of other PRs a test must fail in to be
// treated as a common (environmental) failure rather than one the PR caused.
const CommonFailureThreshold = 2

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Owner        string
	Repo         string
	GitHubToken  string // Please use env var as this is plaintext
	State        string
	MaxPRs       int
	RequestDelay time.Duration

	PRNumber    int // Set from positional args; 0 when the command takes none
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	LogLevel    log.Level

	DBBackend schema.DatabaseBackend
	DBConnect string // Please use env var as this is plaintext

	// ScrapeParams records the inputs of a scrape run for later auditing
	ScrapeParams map[string]any
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PRArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Repo        string `mapstructure:"repo"`
	GitHubToken string `mapstructure:"github-token"`
	OutputFile  string `mapstructure:"output-file"`
	Limit       int    `mapstructure:"limit"`
	Precision   int    `mapstructure:"precision"`
	Output      string `mapstructure:"output"`
	Width       int    `mapstructure:"width"`
	Color       string `mapstructure:"color"`
	LogLevel    string `mapstructure:"log-level"`
	DBBackend   string `mapstructure:"db-backend"`
	DBConnect   string `mapstructure:"db-connect"`

	// --- Fields from scrapeCmd.Flags() ---
	State        string `mapstructure:"state"`
	MaxPRs       int    `mapstructure:"max-prs"`
	RequestDelay string `mapstructure:"request-delay"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ScrapeParams != nil {
		clone.ScrapeParams = make(map[string]any, len(c.ScrapeParams))
		maps.Copy(clone.ScrapeParams, c.ScrapeParams)
	}
	return &clone
}

// RepoRef returns a reference to the given PR of the configured repository.
func (c *Config) RepoRef(number int) schema.PullRef {
	return schema.PullRef{Owner: c.Owner, Repo: c.Repo, Number: number}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRepository(cfg, input); err != nil {
		return err
	}
	if err := processScrapeInputs(cfg, input); err != nil {
		return err
	}
	if err := processPRArg(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfig validates the storage backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.DBBackend = schema.DatabaseBackend(strings.ToLower(input.DBBackend))
	if cfg.DBBackend == "" {
		cfg.DBBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.DBBackend]; !ok {
		return fmt.Errorf("invalid db backend '%s'. must be sqlite, mysql, postgresql, none", input.DBBackend)
	}
	cfg.DBConnect = input.DBConnect
	return ValidateDatabaseConnectionString(cfg.DBBackend, cfg.DBConnect)
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.GitHubToken = input.GitHubToken

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	level := input.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	cfg.LogLevel, err = log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processRepository splits the owner/name repository reference.
func processRepository(cfg *Config, input *ConfigRawInput) error {
	repo := strings.TrimSpace(input.Repo)
	if repo == "" {
		repo = DefaultRepo
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid repo '%s'. must be owner/name", input.Repo)
	}
	cfg.Owner = owner
	cfg.Repo = name
	return nil
}

// processScrapeInputs handles the scraping window and pacing.
func processScrapeInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.State = strings.ToLower(strings.TrimSpace(input.State))
	if cfg.State == "" {
		cfg.State = DefaultPullState
	}
	if _, ok := schema.ValidPullStates[cfg.State]; !ok {
		return fmt.Errorf("invalid state '%s'. must be open, closed, all", input.State)
	}

	if input.MaxPRs < 0 {
		return fmt.Errorf("max-prs cannot be negative (received %d)", input.MaxPRs)
	}
	cfg.MaxPRs = input.MaxPRs
	if cfg.MaxPRs == 0 {
		cfg.MaxPRs = DefaultMaxPRs
	}

	cfg.RequestDelay = DefaultRequestDelay
	if input.RequestDelay != "" {
		delay, err := time.ParseDuration(input.RequestDelay)
		if err != nil {
			return fmt.Errorf("invalid request-delay '%s': %w", input.RequestDelay, err)
		}
		if delay < 0 {
			return fmt.Errorf("request-delay cannot be negative (received %s)", delay)
		}
		cfg.RequestDelay = delay
	}

	cfg.ScrapeParams = map[string]any{
		"repo":          cfg.Owner + "/" + cfg.Repo,
		"state":         cfg.State,
		"max_prs":       cfg.MaxPRs,
		"request_delay": cfg.RequestDelay.String(),
	}
	return nil
}

// processPRArg parses the optional positional PR number.
func processPRArg(cfg *Config, input *ConfigRawInput) error {
	cfg.PRNumber = 0
	arg := strings.TrimPrefix(strings.TrimSpace(input.PRArg), "#")
	if arg == "" {
		return nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid PR number '%s'. must be a positive integer", input.PRArg)
	}
	cfg.PRNumber = n
	return nil
}
