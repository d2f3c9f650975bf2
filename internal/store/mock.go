package store

import (
	"context"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetFactStore implements the StoreManager interface.
func (m *MockStoreManager) GetFactStore() contract.FactStore {
	ret := m.Called()
	facts, _ := ret.Get(0).(contract.FactStore)
	return facts
}

// MockFactStore is a mock implementation of FactStore for testing.
type MockFactStore struct {
	mock.Mock
}

var _ contract.FactStore = &MockFactStore{} // Compile-time check

// CountOtherFailingPRs implements the FailureCounter interface.
func (m *MockFactStore) CountOtherFailingPRs(ctx context.Context, testName string, excludePR int) (int, error) {
	args := m.Called(ctx, testName, excludePR)
	return args.Int(0), args.Error(1)
}

// UpsertPullRequest implements the FactStore interface.
func (m *MockFactStore) UpsertPullRequest(ctx context.Context, pr schema.PullRequest) error {
	return m.Called(ctx, pr).Error(0)
}

// UpsertSmokeTest implements the FactStore interface.
func (m *MockFactStore) UpsertSmokeTest(ctx context.Context, fact schema.SmokeTestFact) error {
	return m.Called(ctx, fact).Error(0)
}

// UpsertTestFailures implements the FactStore interface.
func (m *MockFactStore) UpsertTestFailures(ctx context.Context, records []schema.TestFailureRecord) error {
	return m.Called(ctx, records).Error(0)
}

// UpsertCoverage implements the FactStore interface.
func (m *MockFactStore) UpsertCoverage(ctx context.Context, fact schema.CoverageFact) error {
	return m.Called(ctx, fact).Error(0)
}

// BeginScrape implements the FactStore interface.
func (m *MockFactStore) BeginScrape(ctx context.Context, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(ctx, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndScrape implements the FactStore interface.
func (m *MockFactStore) EndScrape(ctx context.Context, runID int64, endTime time.Time, prsProcessed int) error {
	return m.Called(ctx, runID, endTime, prsProcessed).Error(0)
}

// GetTestFailures implements the FactStore interface.
func (m *MockFactStore) GetTestFailures(ctx context.Context, prNumber int) ([]schema.TestFailureRecord, error) {
	args := m.Called(ctx, prNumber)
	records, _ := args.Get(0).([]schema.TestFailureRecord)
	return records, args.Error(1)
}

// GetSmokeTests implements the FactStore interface.
func (m *MockFactStore) GetSmokeTests(ctx context.Context, prNumber int) ([]schema.SmokeTestFact, error) {
	args := m.Called(ctx, prNumber)
	facts, _ := args.Get(0).([]schema.SmokeTestFact)
	return facts, args.Error(1)
}

// GetCoverage implements the FactStore interface.
func (m *MockFactStore) GetCoverage(ctx context.Context, prNumber int) (schema.CoverageFact, bool, error) {
	args := m.Called(ctx, prNumber)
	return args.Get(0).(schema.CoverageFact), args.Bool(1), args.Error(2)
}

// ListPullRequests implements the FactStore interface.
func (m *MockFactStore) ListPullRequests(ctx context.Context, limit int) ([]schema.PROverview, error) {
	args := m.Called(ctx, limit)
	prs, _ := args.Get(0).([]schema.PROverview)
	return prs, args.Error(1)
}

// GetSummary implements the FactStore interface.
func (m *MockFactStore) GetSummary(ctx context.Context) (schema.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.Summary), args.Error(1)
}

// GetHypervisorStats implements the FactStore interface.
func (m *MockFactStore) GetHypervisorStats(ctx context.Context) ([]schema.HypervisorStat, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]schema.HypervisorStat)
	return stats, args.Error(1)
}

// GetFrequentFailures implements the FactStore interface.
func (m *MockFactStore) GetFrequentFailures(ctx context.Context, limit int) ([]schema.FrequentFailure, error) {
	args := m.Called(ctx, limit)
	failures, _ := args.Get(0).([]schema.FrequentFailure)
	return failures, args.Error(1)
}

// GetAllScrapeRuns implements the FactStore interface.
func (m *MockFactStore) GetAllScrapeRuns(ctx context.Context) ([]schema.ScrapeRunRecord, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.ScrapeRunRecord)
	return runs, args.Error(1)
}

// GetStatus implements the FactStore interface.
func (m *MockFactStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the FactStore interface.
func (m *MockFactStore) Close() error {
	return m.Called().Error(0)
}
