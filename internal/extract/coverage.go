package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// maxCoverageRate bounds the percentages accepted as a coverage rate.
const maxCoverageRate = 100.0

var (
	percentRe      = regexp.MustCompile(`(\d+\.?\d*)%`)
	signedChangeRe = regexp.MustCompile(`([+-]\d+\.?\d*)%`)
	phraseChangeRe = regexp.MustCompile(`(?i)\b(increase|decrease)d?\**\s+(?:coverage\s+)?by\s+` + "`?" + `(\d+\.?\d*)%`)
	codecovURLRe   = regexp.MustCompile(`https://(?:app\.)?codecov\.io/[^\s()<>\[\]"'` + "`" + `]+`)
)

// ExtractCoverage parses a Codecov comment. A percentage is mandatory.
// The change defaults to zero and the URL falls back to the canonical Codecov PR page,
// in which case the outcome is partial.
func ExtractCoverage(body string, pr schema.PullRef) (schema.CoverageFact, Outcome) {
	pct, ok := firstPercentage(body)
	if !ok {
		return schema.CoverageFact{}, OutcomeRejected
	}

	fact := schema.CoverageFact{
		PRNumber:   pr.Number,
		Percentage: pct,
		Change:     coverageChange(body),
	}

	outcome := OutcomeComplete
	if u := codecovURLRe.FindString(body); u != "" {
		fact.URL = strings.TrimRight(u, ".,;:")
	} else {
		fact.URL = CanonicalCoverageURL(pr)
		outcome = OutcomePartial
	}
	return fact, outcome
}

// CanonicalCoverageURL is the Codecov page of a pull request.
func CanonicalCoverageURL(pr schema.PullRef) string {
	return fmt.Sprintf("https://app.codecov.io/gh/%s/%s/pull/%d", pr.Owner, pr.Repo, pr.Number)
}

// firstPercentage returns the first percentage that is a valid coverage rate.
func firstPercentage(body string) (float64, bool) {
	for _, m := range percentRe.FindAllStringSubmatch(body, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > maxCoverageRate {
			continue
		}
		return v, true
	}
	return 0, false
}

// coverageChange reads a signed delta, then an "increased/decreased by" phrase.
func coverageChange(body string) float64 {
	if m := signedChangeRe.FindStringSubmatch(body); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}

	if m := phraseChangeRe.FindStringSubmatch(body); m != nil {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0
		}
		if strings.EqualFold(m[1], "decrease") {
			return -v
		}
		return v
	}

	return 0
}
