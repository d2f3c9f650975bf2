// Package ghclient reads pull requests, comments and reviews from the GitHub API.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudstack-dashboard/prdash/internal/contract"
	"github.com/cloudstack-dashboard/prdash/schema"
	"github.com/google/go-github/v61/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	perPage    = 100
	maxRetries = 4

	// maxRateLimitWait is the longest primary rate limit reset worth waiting for.
	maxRateLimitWait = time.Minute
)

// Client implements contract.PullSource for one repository.
type Client struct {
	gh    *github.Client
	owner string
	repo  string

	// newBackOff builds the retry policy of one request
	newBackOff func() backoff.BackOff
}

var _ contract.PullSource = &Client{} // Compile-time check

// NewClient creates a client for owner/repo. An empty token gives an anonymous client,
// which GitHub limits to 60 requests per hour.
func NewClient(ctx context.Context, token, owner, repo string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		log.Debug("Using unauthenticated GitHub client")
	}
	return newClient(github.NewClient(httpClient), owner, repo)
}

func newClient(gh *github.Client, owner, repo string) *Client {
	return &Client{
		gh:    gh,
		owner: owner,
		repo:  repo,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
	}
}

// ListPullRequests returns up to maxPRs PRs in the given state, most recently updated first.
// A maxPRs of 0 or less lists every PR.
func (c *Client) ListPullRequests(ctx context.Context, state string, maxPRs int) ([]schema.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	if maxPRs > 0 && maxPRs < perPage {
		opts.PerPage = maxPRs
	}

	var prs []schema.PullRequest
	for {
		var page []*github.PullRequest
		var resp *github.Response
		err := c.retry(ctx, "list pull requests", func() (*github.Response, error) {
			var err error
			page, resp, err = c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, pr := range page {
			prs = append(prs, convertPullRequest(pr))
			if maxPRs > 0 && len(prs) >= maxPRs {
				return prs, nil
			}
		}
		if resp.NextPage == 0 {
			return prs, nil
		}
		opts.Page = resp.NextPage
	}
}

// GetPullRequest returns a single PR.
func (c *Client) GetPullRequest(ctx context.Context, number int) (schema.PullRequest, error) {
	var pr *github.PullRequest
	err := c.retry(ctx, "get pull request", func() (*github.Response, error) {
		var resp *github.Response
		var err error
		pr, resp, err = c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
		return resp, err
	})
	if err != nil {
		return schema.PullRequest{}, err
	}
	return convertPullRequest(pr), nil
}

// ListComments returns every issue comment of a PR in creation order.
func (c *Client) ListComments(ctx context.Context, number int) ([]schema.CommentRecord, error) {
	opts := &github.IssueListCommentsOptions{
		Sort:        github.String("created"),
		Direction:   github.String("asc"),
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var comments []schema.CommentRecord
	for {
		var page []*github.IssueComment
		var resp *github.Response
		err := c.retry(ctx, "list comments", func() (*github.Response, error) {
			var err error
			page, resp, err = c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
			return resp, err
		})
		if err != nil {
			return nil, err
		}
		for _, comment := range page {
			comments = append(comments, schema.CommentRecord{
				ID:          comment.GetID(),
				Body:        comment.GetBody(),
				AuthorLogin: comment.GetUser().GetLogin(),
				CreatedAt:   comment.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opts.Page = resp.NextPage
	}
}

// CountApprovals returns the number of reviewers whose latest review approves the PR.
// Comment-only reviews do not replace an earlier verdict.
func (c *Client) CountApprovals(ctx context.Context, number int) (int, error) {
	opts := &github.ListOptions{PerPage: perPage}
	latest := make(map[string]string)

	for {
		var page []*github.PullRequestReview
		var resp *github.Response
		err := c.retry(ctx, "list reviews", func() (*github.Response, error) {
			var err error
			page, resp, err = c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, number, opts)
			return resp, err
		})
		if err != nil {
			return 0, err
		}
		// Reviews come back in chronological order
		for _, review := range page {
			login := review.GetUser().GetLogin()
			state := review.GetState()
			if login == "" || state == "COMMENTED" || state == "PENDING" {
				continue
			}
			latest[login] = state
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	approvals := 0
	for _, state := range latest {
		if state == "APPROVED" {
			approvals++
		}
	}
	return approvals, nil
}

func convertPullRequest(pr *github.PullRequest) schema.PullRequest {
	return schema.PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Author:    pr.GetUser().GetLogin(),
		State:     pr.GetState(),
		URL:       pr.GetHTMLURL(),
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

// retry runs call until it succeeds, fails permanently or the backoff gives up.
func (c *Client) retry(ctx context.Context, op string, call func() (*github.Response, error)) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), maxRetries), ctx)
	err := backoff.RetryNotify(func() error {
		resp, err := call()
		return classifyError(ctx, resp, err)
	}, policy, func(err error, wait time.Duration) {
		log.WithFields(log.Fields{"op": op, "wait": wait}).WithError(err).Warn("Retrying GitHub request")
	})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

// classifyError marks errors that retrying cannot fix as permanent.
// Rate limits, abuse detection and 5xx responses are transient.
func classifyError(ctx context.Context, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return backoff.Permanent(err)
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		if time.Until(rateErr.Rate.Reset.Time) > maxRateLimitWait {
			return backoff.Permanent(err)
		}
		return err
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return err
	}

	if resp != nil && resp.Response != nil {
		code := resp.StatusCode
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return err
		}
		if code >= http.StatusBadRequest {
			return backoff.Permanent(err)
		}
	}

	// Network errors carry no response
	return err
}
