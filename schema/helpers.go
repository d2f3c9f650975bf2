package schema

import "strings"

// Has reports whether every bit of other is set in k.
func (k CommentKind) Has(other CommentKind) bool {
	return other != KindNone && k&other == other
}

// String renders the kind as a plus-separated list, e.g. "coverage+smoke".
func (k CommentKind) String() string {
	if k == KindNone {
		return "none"
	}
	var parts []string
	if k.Has(KindCoverage) {
		parts = append(parts, "coverage")
	}
	if k.Has(KindSmokeTest) {
		parts = append(parts, "smoke")
	}
	return strings.Join(parts, "+")
}

// IsFailing reports whether the result counts as a failure for classification.
func (r TestResult) IsFailing() bool {
	return r == ResultFailure || r == ResultError
}

// ParseTestResult maps a raw Result cell to its canonical value.
// Backticks and surrounding whitespace must already be stripped.
func ParseTestResult(raw string) (TestResult, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "pass", "passed", "ok":
		return ResultSuccess, true
	case "failure", "fail", "failed":
		return ResultFailure, true
	case "error", "errored":
		return ResultError, true
	case "skip", "skipped":
		return ResultSkip, true
	default:
		return "", false
	}
}

// SeverityFor returns the triage severity of a common or unique failure.
func SeverityFor(isCommon bool) Severity {
	if isCommon {
		return SeverityLow
	}
	return SeverityHigh
}
