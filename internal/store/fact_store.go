package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/go-sql-driver/mysql"    // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for fact storage.
const (
	prInfoTable       = "pr_info"
	smokeTestsTable   = "pr_smoke_tests"
	coverageTable     = "pr_coverage"
	testFailuresTable = "test_failures"
	scrapeRunsTable   = "scrape_runs"
)

// allTables lists every table in dependency-free creation order.
var allTables = []string{prInfoTable, smokeTestsTable, coverageTable, testFailuresTable, scrapeRunsTable}

// FactStoreImpl implements the FactStore interface.
type FactStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.FactStore = &FactStoreImpl{} // Compile-time check

// NewFactStore creates a new FactStore with the specified backend.
func NewFactStore(backend schema.DatabaseBackend, connStr string) (contract.FactStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &FactStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create fact tables: %w", err)
	}

	return &FactStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// openDB opens a connection pool for the backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, "", err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=prdash
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "pgx", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// mysqlDSN makes DATETIME columns scan as time.Time in UTC.
func mysqlDSN(connStr string) (string, error) {
	mc, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

// createTables applies the initial schema. Every statement is idempotent.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	ddl, err := initialSchema(backend)
	if err != nil {
		return err
	}
	for _, stmt := range splitStatements(ddl) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// splitStatements splits a migration script on semicolons at line ends.
func splitStatements(script string) []string {
	var stmts []string
	for part := range strings.SplitSeq(script, ";\n") {
		if stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";")); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// quoteTableName quotes the table name based on the backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + tableName + "`"
	}
	return `"` + tableName + `"`
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
// Queries must not contain literal question marks.
func rebind(backend schema.DatabaseBackend, query string) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsertQuery builds an insert that overwrites the row sharing the same keys.
func upsertQuery(backend schema.DatabaseBackend, table string, cols, keys []string) string {
	quoted := quoteTableName(table, backend)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	colList := strings.Join(cols, ", ")

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var updates []string

	switch backend {
	case schema.MySQLBackend:
		for _, c := range cols {
			if !isKey[c] {
				updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
			}
		}
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			quoted, colList, placeholders, strings.Join(updates, ", "))

	case schema.PostgreSQLBackend:
		for _, c := range cols {
			if !isKey[c] {
				updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
			}
		}
		return rebind(backend, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			quoted, colList, placeholders, strings.Join(keys, ", "), strings.Join(updates, ", ")))

	default: // SQLite
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", quoted, colList, placeholders)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
// The zero time is stored as NULL.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if t.IsZero() {
		return nil
	}
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// dbTime scans timestamps stored natively or as text.
type dbTime struct {
	Time  time.Time
	Valid bool
}

// textTimeLayouts are tried in order when a timestamp arrives as text.
var textTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05"}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range textTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("failed to parse timestamp %q", s)
}

// Ptr returns nil for a NULL timestamp.
func (t dbTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	tt := t.Time
	return &tt
}

// isNoop reports whether persistence is disabled.
func (fs *FactStoreImpl) isNoop() bool {
	return fs.backend == schema.NoneBackend || fs.db == nil
}

// q rebinds a query for the store's backend after substituting table names.
func (fs *FactStoreImpl) q(format string, tables ...string) string {
	args := make([]any, len(tables))
	for i, t := range tables {
		args[i] = quoteTableName(t, fs.backend)
	}
	return rebind(fs.backend, fmt.Sprintf(format, args...))
}

// Close closes the underlying connection.
func (fs *FactStoreImpl) Close() error {
	if fs.db != nil {
		return fs.db.Close()
	}
	return nil
}

// execContext runs a write statement.
func (fs *FactStoreImpl) execContext(ctx context.Context, query string, args ...any) error {
	_, err := fs.db.ExecContext(ctx, query, args...)
	return err
}
