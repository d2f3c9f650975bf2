package core

import (
	"context"
	"fmt"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/internal/extract"
	"github.com/cloudstack-dashboard/prdash/schema"
	log "github.com/sirupsen/logrus"
)

// ParseComment runs every extractor a comment is routed to. It has no side effects.
// Meta fields left empty are filled from the comment and the PR reference.
func ParseComment(comment schema.CommentRecord, meta schema.CommentMeta, ref schema.PullRef) schema.ParsedComment {
	if meta.PRNumber == 0 {
		meta.PRNumber = ref.Number
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = comment.CreatedAt
	}

	kind := extract.Classify(comment.Body, comment.AuthorLogin)
	parsed := schema.ParsedComment{Kind: kind.String()}

	if kind.Has(schema.KindSmokeTest) {
		fact, outcome := extract.ExtractSmokeTest(comment.Body, meta)
		parsed.SmokeOutcome = outcome.String()
		if outcome.OK() {
			parsed.SmokeTest = &fact
			parsed.TestRows = extract.ExtractTestRows(comment.Body)
		}
	}

	if kind.Has(schema.KindCoverage) {
		fact, outcome := extract.ExtractCoverage(comment.Body, ref)
		parsed.CoverageOutcome = outcome.String()
		if outcome.OK() {
			if fact.UpdatedAt.IsZero() {
				fact.UpdatedAt = meta.CreatedAt
			}
			parsed.Coverage = &fact
		}
	}

	return parsed
}

// testFailureRecords keys the table rows of a smoke-test comment by its run.
func testFailureRecords(fact schema.SmokeTestFact, rows []schema.TestRow) []schema.TestFailureRecord {
	if len(rows) == 0 {
		return nil
	}
	records := make([]schema.TestFailureRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, schema.TestFailureRecord{
			PRNumber:          fact.PRNumber,
			TestName:          row.Name,
			TestFile:          row.File,
			Result:            row.Result,
			TimeSeconds:       row.TimeSeconds,
			Hypervisor:        fact.Hypervisor,
			HypervisorVersion: fact.Version,
			TestDate:          fact.TestDate(),
			LogsURL:           fact.LogsURL,
		})
	}
	return records
}

// ingestState carries what has been stored for a PR within one fetch.
type ingestState struct {
	coverageStored bool
}

// IngestComment parses a comment and stores the facts it carries.
// Comments that match no extractor are counted as ignored.
func IngestComment(ctx context.Context, facts contract.FactStore, ref schema.PullRef, comment schema.CommentRecord) (schema.IngestStats, error) {
	return ingestComment(ctx, facts, ref, comment, &ingestState{})
}

func ingestComment(ctx context.Context, facts contract.FactStore, ref schema.PullRef, comment schema.CommentRecord, state *ingestState) (schema.IngestStats, error) {
	stats := schema.IngestStats{Comments: 1}
	parsed := ParseComment(comment, schema.CommentMeta{}, ref)
	logger := loggerFor(ctx, ref.Number).WithField("comment", comment.ID)

	if parsed.SmokeTest == nil && parsed.Coverage == nil {
		if parsed.Kind != schema.KindNone.String() {
			logger.WithField("kind", parsed.Kind).Debug("Comment matched a marker but carried no fact")
		}
		stats.Ignored = 1
		return stats, nil
	}

	if fact := parsed.SmokeTest; fact != nil {
		if fact.Status == schema.StatusFail && len(fact.FailedTests) != fact.Errors {
			logger.WithFields(log.Fields{
				"hypervisor": fact.Hypervisor,
				"errors":     fact.Errors,
				"parsed":     len(fact.FailedTests),
			}).Warn("Failed test names do not match the error count")
		}
		if err := facts.UpsertSmokeTest(ctx, *fact); err != nil {
			return stats, err
		}
		stats.SmokeTests++

		if records := testFailureRecords(*fact, parsed.TestRows); len(records) > 0 {
			if err := facts.UpsertTestFailures(ctx, records); err != nil {
				return stats, err
			}
			stats.TestRows += len(records)
		}
	}

	if fact := parsed.Coverage; fact != nil {
		if state.coverageStored {
			logger.Debug("Skipping later coverage comment")
		} else {
			if err := facts.UpsertCoverage(ctx, *fact); err != nil {
				return stats, err
			}
			state.coverageStored = true
			stats.Coverage++
		}
	}

	return stats, nil
}

// IngestPR stores a PR and every fact found in its comments, in order.
// The first coverage comment wins.
func IngestPR(ctx context.Context, facts contract.FactStore, ref schema.PullRef, pr schema.PullRequest, comments []schema.CommentRecord) (schema.IngestStats, error) {
	stats := schema.IngestStats{PRs: 1}
	if err := facts.UpsertPullRequest(ctx, pr); err != nil {
		return stats, err
	}

	state := &ingestState{}
	for _, comment := range comments {
		commentStats, err := ingestComment(ctx, facts, ref, comment, state)
		stats.Add(commentStats)
		if err != nil {
			return stats, fmt.Errorf("failed to ingest comment %d of PR #%d: %w", comment.ID, pr.Number, err)
		}
	}
	return stats, nil
}
