package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudstack-dashboard/prdash/internal/ghclient"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func noWait(context.Context, time.Duration) error { return nil }

func smokeComment(id int64, body string) schema.CommentRecord {
	return schema.CommentRecord{ID: id, Body: body, AuthorLogin: "blueorangutan", CreatedAt: commentTime}
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestScraperRun(t *testing.T) {
	ctx := context.Background()

	t.Run("scrapes listed PRs and skips failures", func(t *testing.T) {
		mgr := newTestStore(t)
		facts := mgr.GetFactStore()
		source := &ghclient.MockPullSource{}
		source.On("ListPullRequests", mock.Anything, "open", 3).Return([]schema.PullRequest{
			{Number: 9001, Title: "Fix snapshots", State: "open"},
			{Number: 9002, Title: "Broken", State: "open"},
			{Number: 9003, Title: "Docs", State: "open"},
		}, nil)
		source.On("CountApprovals", mock.Anything, 9001).Return(2, nil)
		source.On("ListComments", mock.Anything, 9001).Return([]schema.CommentRecord{
			smokeComment(1, failingSmokeBody),
			{ID: 2, Body: coverageBody, AuthorLogin: "codecov[bot]", CreatedAt: commentTime},
		}, nil)
		source.On("CountApprovals", mock.Anything, 9002).Return(0, errors.New("bad gateway"))
		source.On("CountApprovals", mock.Anything, 9003).Return(0, nil)
		source.On("ListComments", mock.Anything, 9003).Return(nil, nil)

		scraper := NewScraper(source, facts, "apache", "cloudstack", time.Second)
		scraper.wait = noWait

		stats, err := scraper.Run(ctx, ScrapeOptions{State: "open", MaxPRs: 3, Params: map[string]any{"state": "open"}})
		require.NoError(t, err)
		assert.Equal(t, 2, stats.PRs)
		assert.Equal(t, 1, stats.FailedPRs)
		assert.Equal(t, 1, stats.SmokeTests)
		assert.Equal(t, 4, stats.TestRows)
		assert.Equal(t, 1, stats.Coverage)
		source.AssertExpectations(t)
		source.AssertNotCalled(t, "ListComments", mock.Anything, 9002)

		prs, err := facts.ListPullRequests(ctx, 10)
		require.NoError(t, err)
		require.Len(t, prs, 2)
		byNumber := map[int]schema.PROverview{}
		for _, pr := range prs {
			byNumber[pr.Number] = pr
		}
		assert.Equal(t, 2, byNumber[9001].Approvals)

		runs, err := facts.GetAllScrapeRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, int32(2), runs[0].PRsProcessed)
		assert.NotNil(t, runs[0].EndTime)
		require.NotNil(t, runs[0].ConfigParams)
		assert.Contains(t, *runs[0].ConfigParams, "open")
	})

	t.Run("single PR", func(t *testing.T) {
		mgr := newTestStore(t)
		source := &ghclient.MockPullSource{}
		source.On("GetPullRequest", mock.Anything, 9001).Return(schema.PullRequest{Number: 9001, State: "closed"}, nil)
		source.On("CountApprovals", mock.Anything, 9001).Return(1, nil)
		source.On("ListComments", mock.Anything, 9001).Return([]schema.CommentRecord{smokeComment(1, passingSmokeBody)}, nil)

		scraper := NewScraper(source, mgr.GetFactStore(), "apache", "cloudstack", 0)
		scraper.wait = noWait

		stats, err := scraper.Run(ctx, ScrapeOptions{State: "open", PRNumber: 9001})
		require.NoError(t, err)
		assert.Equal(t, 1, stats.PRs)
		assert.Equal(t, 1, stats.SmokeTests)
		assert.Zero(t, stats.TestRows)
		source.AssertNotCalled(t, "ListPullRequests", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("listing error aborts", func(t *testing.T) {
		mgr := newTestStore(t)
		source := &ghclient.MockPullSource{}
		source.On("ListPullRequests", mock.Anything, "closed", 10).Return(nil, errors.New("unauthorized"))

		scraper := NewScraper(source, mgr.GetFactStore(), "apache", "cloudstack", 0)
		_, err := scraper.Run(ctx, ScrapeOptions{State: "closed", MaxPRs: 10})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list closed pull requests")

		runs, err := mgr.GetFactStore().GetAllScrapeRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1, "the run is closed even when it fails")
		assert.Zero(t, runs[0].PRsProcessed)
	})

	t.Run("cancellation stops between PRs", func(t *testing.T) {
		mgr := newTestStore(t)
		source := &ghclient.MockPullSource{}
		source.On("ListPullRequests", mock.Anything, "open", 0).Return([]schema.PullRequest{
			{Number: 1}, {Number: 2},
		}, nil)
		source.On("CountApprovals", mock.Anything, 1).Return(0, nil)
		source.On("ListComments", mock.Anything, 1).Return(nil, nil)

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		scraper := NewScraper(source, mgr.GetFactStore(), "apache", "cloudstack", time.Second)
		waits := 0
		scraper.wait = func(ctx context.Context, _ time.Duration) error {
			waits++
			// The first wait sits inside PR #1, the second one between PRs
			if waits == 2 {
				cancel()
				return ctx.Err()
			}
			return nil
		}

		stats, err := scraper.Run(cctx, ScrapeOptions{State: "open"})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, stats.PRs)
		source.AssertNotCalled(t, "CountApprovals", mock.Anything, 2)

		runs, err := mgr.GetFactStore().GetAllScrapeRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, int32(1), runs[0].PRsProcessed)
	})
}
