package core

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudstack-dashboard/prdash/internal/store"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func failing(pr int, name string, result schema.TestResult) schema.TestFailureRecord {
	return schema.TestFailureRecord{PRNumber: pr, TestName: name, Result: result, Hypervisor: "KVM", TestDate: "2024-05-03"}
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		common   bool
		severity schema.Severity
	}{
		{"unique to the PR", 0, false, schema.SeverityHigh},
		{"one other PR", 1, false, schema.SeverityHigh},
		{"at the threshold", 2, true, schema.SeverityLow},
		{"well above", 10, true, schema.SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := &store.MockFactStore{}
			facts.On("CountOtherFailingPRs", mock.Anything, "test_x", 1).Return(tt.count, nil)

			class, err := ClassifyFailure(context.Background(), facts, "test_x", 1)
			require.NoError(t, err)
			assert.Equal(t, schema.FailureClassification{
				TestName:        "test_x",
				PRNumber:        1,
				OccurrenceCount: tt.count,
				IsCommon:        tt.common,
				Severity:        tt.severity,
			}, class)
			facts.AssertExpectations(t)
		})
	}

	t.Run("store error", func(t *testing.T) {
		facts := &store.MockFactStore{}
		facts.On("CountOtherFailingPRs", mock.Anything, "test_x", 1).Return(0, errors.New("timeout"))
		_, err := ClassifyFailure(context.Background(), facts, "test_x", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestClassifyFailure_SharedAcrossPRs(t *testing.T) {
	ctx := context.Background()
	facts := newTestStore(t).GetFactStore()
	require.NoError(t, facts.UpsertTestFailures(ctx, []schema.TestFailureRecord{
		failing(1, "test_x", schema.ResultError),
		failing(2, "test_x", schema.ResultFailure),
		failing(3, "test_x", schema.ResultError),
	}))

	class, err := ClassifyFailure(ctx, facts, "test_x", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, class.OccurrenceCount, "PRs #2 and #3")
	assert.True(t, class.IsCommon)
	assert.Equal(t, schema.SeverityLow, class.Severity)

	// The PR's own record is never counted
	for _, pr := range []int{1, 2, 3} {
		class, err := ClassifyFailure(ctx, facts, "test_x", pr)
		require.NoError(t, err)
		assert.Equal(t, 2, class.OccurrenceCount)
	}

	// Recomputing gives the same answer
	again, err := ClassifyFailure(ctx, facts, "test_x", 1)
	require.NoError(t, err)
	assert.Equal(t, class.IsCommon, again.IsCommon)
}

func TestClassifyFailures(t *testing.T) {
	ctx := context.Background()
	facts := newTestStore(t).GetFactStore()
	require.NoError(t, facts.UpsertTestFailures(ctx, []schema.TestFailureRecord{
		failing(1, "test_common", schema.ResultError),
		failing(1, "test_unique", schema.ResultFailure),
		failing(1, "test_skipped", schema.ResultSkip),
		failing(1, "test_passed", schema.ResultSuccess),
		failing(2, "test_common", schema.ResultFailure),
		failing(3, "test_common", schema.ResultError),
		failing(4, "test_unique", schema.ResultSuccess),
	}))
	xen := failing(1, "test_common", schema.ResultError)
	xen.Hypervisor = "XEN"
	require.NoError(t, facts.UpsertTestFailures(ctx, []schema.TestFailureRecord{xen}))

	results, err := ClassifyFailures(ctx, facts, 1)
	require.NoError(t, err)
	require.Len(t, results, 3, "only failing records are classified")

	byHypervisor := map[string]schema.ClassifiedFailure{}
	for _, r := range results {
		byHypervisor[r.TestName+"/"+r.Hypervisor] = r
	}
	assert.True(t, byHypervisor["test_common/KVM"].IsCommon)
	assert.True(t, byHypervisor["test_common/XEN"].IsCommon)
	assert.Equal(t, 2, byHypervisor["test_common/XEN"].OccurrenceCount)

	unique := byHypervisor["test_unique/KVM"]
	assert.False(t, unique.IsCommon, "a passing run elsewhere does not count")
	assert.Equal(t, 0, unique.OccurrenceCount)
	assert.Equal(t, schema.SeverityHigh, unique.Severity)

	empty, err := ClassifyFailures(ctx, facts, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestClassifyFailures_QueriesEachNameOnce(t *testing.T) {
	ctx := context.Background()
	facts := &store.MockFactStore{}
	xen := failing(1, "test_x", schema.ResultError)
	xen.Hypervisor = "XEN"
	facts.On("GetTestFailures", mock.Anything, 1).Return([]schema.TestFailureRecord{
		failing(1, "test_x", schema.ResultError), xen,
	}, nil)
	facts.On("CountOtherFailingPRs", mock.Anything, "test_x", 1).Return(5, nil).Once()

	results, err := ClassifyFailures(ctx, facts, 1)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	facts.AssertExpectations(t)
}
