package ghclient

import (
	"context"

	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockPullSource is a mock implementation of PullSource for testing.
type MockPullSource struct {
	mock.Mock
}

var _ contract.PullSource = &MockPullSource{} // Compile-time check

// ListPullRequests implements the PullSource interface.
func (m *MockPullSource) ListPullRequests(ctx context.Context, state string, maxPRs int) ([]schema.PullRequest, error) {
	args := m.Called(ctx, state, maxPRs)
	prs, _ := args.Get(0).([]schema.PullRequest)
	return prs, args.Error(1)
}

// GetPullRequest implements the PullSource interface.
func (m *MockPullSource) GetPullRequest(ctx context.Context, number int) (schema.PullRequest, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(schema.PullRequest), args.Error(1)
}

// ListComments implements the PullSource interface.
func (m *MockPullSource) ListComments(ctx context.Context, number int) ([]schema.CommentRecord, error) {
	args := m.Called(ctx, number)
	comments, _ := args.Get(0).([]schema.CommentRecord)
	return comments, args.Error(1)
}

// CountApprovals implements the PullSource interface.
func (m *MockPullSource) CountApprovals(ctx context.Context, number int) (int, error) {
	args := m.Called(ctx, number)
	return args.Int(0), args.Error(1)
}
