package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for fact storage.
	DatabaseBackend string

	// TestResult is the canonical outcome of one row in a smoke-test table.
	TestResult string

	// SmokeStatus is the overall verdict of a smoke-test run.
	SmokeStatus string

	// Severity ranks a failing test for triage.
	Severity string
)

// CommentKind is a bit set describing which extractors a comment should be routed to.
// A comment can carry both signals at once.
type CommentKind uint8

// Comment kinds produced by the classifier.
const (
	KindNone      CommentKind = 0
	KindCoverage  CommentKind = 1 << 0
	KindSmokeTest CommentKind = 1 << 1
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Canonical test results.
const (
	ResultSuccess TestResult = "Success"
	ResultFailure TestResult = "Failure"
	ResultError   TestResult = "Error"
	ResultSkip    TestResult = "Skip"
)

// Smoke-test verdicts.
const (
	StatusOK   SmokeStatus = "OK"
	StatusFail SmokeStatus = "FAIL"
)

// Severity levels for classified failures.
const (
	SeverityLow  Severity = "low"
	SeverityHigh Severity = "high"
)

// UnknownHypervisor is used when no hypervisor could be derived from a comment.
const UnknownHypervisor = "UNKNOWN"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidPullStates lists the PR states accepted by the scraper.
var ValidPullStates = map[string]struct{}{
	"open":   {},
	"closed": {},
	"all":    {},
}
