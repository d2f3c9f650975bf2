package core

import (
	"context"
	"fmt"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
)

// ClassifyFailure tells whether a failing test of a PR also fails in other PRs.
// A test failing in at least contract.CommonFailureThreshold other PRs is common
// (low severity); anything rarer is unique to the PR (high severity).
func ClassifyFailure(ctx context.Context, counter contract.FailureCounter, testName string, prNumber int) (schema.FailureClassification, error) {
	count, err := counter.CountOtherFailingPRs(ctx, testName, prNumber)
	if err != nil {
		return schema.FailureClassification{}, fmt.Errorf("failed to classify %s for PR #%d: %w", testName, prNumber, err)
	}
	isCommon := count >= contract.CommonFailureThreshold
	return schema.FailureClassification{
		TestName:        testName,
		PRNumber:        prNumber,
		OccurrenceCount: count,
		IsCommon:        isCommon,
		Severity:        schema.SeverityFor(isCommon),
	}, nil
}

// ClassifyFailures classifies every failing record of a PR.
// Records with the same test name share one count query.
func ClassifyFailures(ctx context.Context, facts contract.FactStore, prNumber int) ([]schema.ClassifiedFailure, error) {
	records, err := facts.GetTestFailures(ctx, prNumber)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]schema.FailureClassification)
	results := []schema.ClassifiedFailure{}
	for _, record := range records {
		if !record.Result.IsFailing() {
			continue
		}
		class, ok := seen[record.TestName]
		if !ok {
			class, err = ClassifyFailure(ctx, facts, record.TestName, prNumber)
			if err != nil {
				return nil, err
			}
			seen[record.TestName] = class
		}
		results = append(results, schema.ClassifiedFailure{
			TestFailureRecord: record,
			OccurrenceCount:   class.OccurrenceCount,
			IsCommon:          class.IsCommon,
			Severity:          class.Severity,
		})
	}
	return results, nil
}
