package extract

import (
	"strings"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// Markers used to route comments.
const (
	coverageMarker      = "codecov"
	smokeHeadlineMarker = "Trillian test result"
	smokePassedMarker   = "look OK"
)

// Classify decides which extractors a comment should be routed to.
// The coverage and smoke-test checks are independent, so both bits may be set.
func Classify(body, authorLogin string) schema.CommentKind {
	kind := schema.KindNone

	if strings.Contains(strings.ToLower(body), coverageMarker) ||
		strings.Contains(strings.ToLower(authorLogin), coverageMarker) {
		kind |= schema.KindCoverage
	}

	if strings.Contains(body, smokeHeadlineMarker) || strings.Contains(body, smokePassedMarker) {
		kind |= schema.KindSmokeTest
	}

	return kind
}
