package extract

import (
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudstack-dashboard/prdash/schema"
)

var (
	passedRe      = regexp.MustCompile(`(?i)(\d+)\s+look OK`)
	errorsRe      = regexp.MustCompile(`(?i)(\d+)\s+have errors`)
	skippedRe     = regexp.MustCompile(`(?i)(\d+)\s+did not run`)
	environmentRe = regexp.MustCompile("Environment:\\s*`?([\\w.-]+)")
	logsZipRe     = regexp.MustCompile(`https://[^\s()<>\[\]"'` + "`" + `]+?\.zip`)
	logsEnvRe     = regexp.MustCompile(`^pr\d+-t\d+-([\w.-]+)\.zip$`)
	failedTestRe  = regexp.MustCompile(`\b(test_\w+)\b[^\w\n]*(?i:error|failed|fail)\b`)
)

// ExtractSmokeTest parses a smoke-test summary comment.
// The "<N> look OK" count is mandatory; without it the comment is rejected.
// Every other field degrades to empty instead of failing.
func ExtractSmokeTest(body string, meta schema.CommentMeta) (schema.SmokeTestFact, Outcome) {
	passed, ok := firstCount(passedRe, body)
	if !ok {
		return schema.SmokeTestFact{}, OutcomeRejected
	}
	errCount, hasErrors := firstCount(errorsRe, body)
	skipped, hasSkipped := firstCount(skippedRe, body)

	fact := schema.SmokeTestFact{
		PRNumber:  meta.PRNumber,
		Passed:    passed,
		Errors:    errCount,
		Skipped:   skipped,
		Total:     smokeTotal(passed, errCount, hasErrors, skipped, hasSkipped),
		Status:    schema.StatusOK,
		CreatedAt: meta.CreatedAt,
	}
	if hasErrors && errCount > 0 {
		fact.Status = schema.StatusFail
	}

	fact.LogsURL = meta.LogsURL
	if fact.LogsURL == "" {
		fact.LogsURL = logsZipRe.FindString(body)
	}

	hvRaw, verRaw := resolveEnvironment(body, meta, fact.LogsURL)
	fact.Hypervisor, fact.Version = Normalize(hvRaw, verRaw)

	outcome := OutcomeComplete
	if fact.Hypervisor == schema.UnknownHypervisor {
		outcome = OutcomePartial
	}

	if fact.Status == schema.StatusFail {
		fact.FailedTests = FailedTestNames(body)
		if len(fact.FailedTests) != fact.Errors {
			outcome = OutcomePartial
		}
	}

	return fact, outcome
}

// smokeTotal sums the counts that were reported.
func smokeTotal(passed, errCount int, hasErrors bool, skipped int, hasSkipped bool) int {
	total := passed
	if hasErrors {
		total = addCount(total, errCount)
	}
	if hasSkipped {
		total = addCount(total, skipped)
	}
	return total
}

// addCount adds two non-negative counts, saturating instead of overflowing.
func addCount(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// resolveEnvironment picks the raw hypervisor and version of a run.
// Explicit metadata wins, then an "Environment:" field, then the logs file name.
func resolveEnvironment(body string, meta schema.CommentMeta, logsURL string) (hypervisor, version string) {
	if meta.Hypervisor != "" {
		return meta.Hypervisor, meta.Version
	}

	var token string
	if m := environmentRe.FindStringSubmatch(body); m != nil {
		token = m[1]
	} else if logsURL != "" {
		if m := logsEnvRe.FindStringSubmatch(path.Base(logsURL)); m != nil {
			token = m[1]
		}
	}

	hypervisor, version = splitEnvironment(token)
	if meta.Version != "" {
		version = meta.Version
	}
	return hypervisor, version
}

// FailedTestNames lists the distinct failing test names of a comment in first-seen order.
// A table with a Test and a Result column is preferred; a looser per-line pattern is
// tried when the table yields nothing. The result is never nil.
func FailedTestNames(body string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for cells := range ScanTable(Lines(body), PermissiveHeader, 2) {
		name := cells[0]
		result := strings.ToLower(StripBackticks(cells[1]))
		if !strings.HasPrefix(name, "test_") {
			continue
		}
		if strings.Contains(result, "error") || strings.Contains(result, "fail") {
			add(name)
		}
	}
	if len(names) > 0 {
		return names
	}

	for _, m := range failedTestRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return names
}

// firstCount returns the integer captured by the first match of re.
func firstCount(re *regexp.Regexp, body string) (int, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
