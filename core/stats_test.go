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

func TestDecorateFrequentFailures(t *testing.T) {
	failures := []schema.FrequentFailure{
		{TestName: "a", PRCount: 0},
		{TestName: "b", PRCount: 1},
		{TestName: "c", PRCount: 2},
		{TestName: "d", PRCount: 3},
	}
	decorateFrequentFailures(failures)

	expected := []struct {
		common   bool
		severity schema.Severity
	}{
		{false, schema.SeverityHigh},
		{false, schema.SeverityHigh},
		{false, schema.SeverityHigh},
		{true, schema.SeverityLow},
	}
	for i, want := range expected {
		assert.Equal(t, want.common, failures[i].IsCommon, failures[i].TestName)
		assert.Equal(t, want.severity, failures[i].Severity, failures[i].TestName)
	}
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("combines every view", func(t *testing.T) {
		facts := &store.MockFactStore{}
		facts.On("GetSummary", mock.Anything).Return(schema.Summary{PRsTracked: 4, SmokeRuns: 6}, nil)
		facts.On("GetHypervisorStats", mock.Anything).Return([]schema.HypervisorStat{{Hypervisor: "KVM", Runs: 6}}, nil)
		facts.On("GetFrequentFailures", mock.Anything, 5).Return([]schema.FrequentFailure{{TestName: "test_x", PRCount: 3}}, nil)

		dash, err := GetDashboard(ctx, facts, 5)
		require.NoError(t, err)
		assert.Equal(t, 4, dash.Summary.PRsTracked)
		assert.Len(t, dash.Hypervisors, 1)
		require.Len(t, dash.FrequentFailures, 1)
		assert.True(t, dash.FrequentFailures[0].IsCommon)
		facts.AssertExpectations(t)
	})

	t.Run("stops at the first error", func(t *testing.T) {
		facts := &store.MockFactStore{}
		facts.On("GetSummary", mock.Anything).Return(schema.Summary{}, nil)
		facts.On("GetHypervisorStats", mock.Anything).Return(nil, errors.New("gone"))

		_, err := GetDashboard(ctx, facts, 5)
		require.Error(t, err)
		facts.AssertNotCalled(t, "GetFrequentFailures", mock.Anything, mock.Anything)
	})

	t.Run("against a real store", func(t *testing.T) {
		facts := newTestStore(t).GetFactStore()
		require.NoError(t, facts.UpsertTestFailures(ctx, []schema.TestFailureRecord{
			failing(1, "test_x", schema.ResultError),
			failing(2, "test_x", schema.ResultError),
			failing(3, "test_x", schema.ResultFailure),
			failing(1, "test_y", schema.ResultError),
		}))

		dash, err := GetDashboard(ctx, facts, 10)
		require.NoError(t, err)
		require.Len(t, dash.FrequentFailures, 2)
		assert.Equal(t, "test_x", dash.FrequentFailures[0].TestName)
		assert.True(t, dash.FrequentFailures[0].IsCommon)
		assert.False(t, dash.FrequentFailures[1].IsCommon)
		assert.Equal(t, 4, dash.Summary.FailingRecords)
	})
}
