// Package gateway provides a gateway to the GitHub issue tracker,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/issue-sweeper/internal/domain"
)

// Tracker defines the behavior of a gateway for reading and mutating
// issues on a remote tracker. All mutating methods act on a single issue
// and return a *TrackerError on API failure.
type Tracker interface {
	ListOpenIssues(ctx context.Context) ([]domain.Issue, error)
	AddLabel(ctx context.Context, number int, label string) error
	RemoveLabel(ctx context.Context, number int, label string) error
	CreateComment(ctx context.Context, number int, body string) error
	CloseIssue(ctx context.Context, number int) error
}

// GitHubTracker is the concrete implementation of the Tracker interface.
type GitHubTracker struct {
	client     *github.Client
	owner      string
	repo       string
	staleLabel string
	logger     *log.Logger
}

// NewGitHubTracker is a constructor that creates a new instance of GitHubTracker.
// The stale label is needed up front so listing can resolve when it was applied.
func NewGitHubTracker(token, owner, repo, staleLabel string, logger *log.Logger) (*GitHubTracker, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubTracker{
		client:     github.NewClient(httpClient),
		owner:      owner,
		repo:       repo,
		staleLabel: staleLabel,
		logger:     logger,
	}, nil
}

// ListOpenIssues fetches every open issue in the repository. Pull requests
// are filtered out; this tool does not touch them. For issues already
// carrying the stale label, the label apply time is resolved from the
// issue's event history so the close clock can be computed.
func (t *GitHubTracker) ListOpenIssues(ctx context.Context) ([]domain.Issue, error) {
	t.logger.Printf("Fetching open issues for %s/%s...", t.owner, t.repo)
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var issues []domain.Issue
	for {
		page, resp, err := t.client.Issues.ListByRepo(ctx, t.owner, t.repo, opts)
		if err != nil {
			return nil, classify("list open issues", err)
		}
		for _, gh := range page {
			if gh.IsPullRequest() {
				continue
			}
			issue := domain.Issue{
				Number:    gh.GetNumber(),
				Title:     gh.GetTitle(),
				UpdatedAt: gh.GetUpdatedAt().Time,
			}
			for _, l := range gh.Labels {
				issue.Labels = append(issue.Labels, l.GetName())
			}
			if issue.HasLabel(t.staleLabel) {
				markedAt, err := t.staleMarkedAt(ctx, issue.Number)
				if err != nil {
					return nil, err
				}
				issue.StaleMarkedAt = markedAt
			}
			issues = append(issues, issue)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		t.logger.Println("  Fetching next page of issues...")
	}
	t.logger.Printf("Completed fetching open issues: %d found.", len(issues))
	return issues, nil
}

// staleMarkedAt returns the time of the newest "labeled" event for the
// stale label, or nil when the event history no longer holds one.
func (t *GitHubTracker) staleMarkedAt(ctx context.Context, number int) (*time.Time, error) {
	opts := &github.ListOptions{PerPage: 100}
	var markedAt *time.Time
	for {
		events, resp, err := t.client.Issues.ListIssueEvents(ctx, t.owner, t.repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("list events for issue #%d", number), err)
		}
		for _, ev := range events {
			if ev.GetEvent() != "labeled" || ev.GetLabel().GetName() != t.staleLabel {
				continue
			}
			created := ev.GetCreatedAt().Time
			if markedAt == nil || created.After(*markedAt) {
				markedAt = &created
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return markedAt, nil
}

// AddLabel applies a label to an issue.
func (t *GitHubTracker) AddLabel(ctx context.Context, number int, label string) error {
	_, _, err := t.client.Issues.AddLabelsToIssue(ctx, t.owner, t.repo, number, []string{label})
	if err != nil {
		return classify(fmt.Sprintf("add label %q to issue #%d", label, number), err)
	}
	return nil
}

// RemoveLabel removes a label from an issue.
func (t *GitHubTracker) RemoveLabel(ctx context.Context, number int, label string) error {
	_, err := t.client.Issues.RemoveLabelForIssue(ctx, t.owner, t.repo, number, label)
	if err != nil {
		return classify(fmt.Sprintf("remove label %q from issue #%d", label, number), err)
	}
	return nil
}

// CreateComment posts a comment on an issue.
func (t *GitHubTracker) CreateComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	_, _, err := t.client.Issues.CreateComment(ctx, t.owner, t.repo, number, comment)
	if err != nil {
		return classify(fmt.Sprintf("comment on issue #%d", number), err)
	}
	return nil
}

// CloseIssue closes an issue as not planned.
func (t *GitHubTracker) CloseIssue(ctx context.Context, number int) error {
	req := &github.IssueRequest{
		State:       github.String("closed"),
		StateReason: github.String("not_planned"),
	}
	_, _, err := t.client.Issues.Edit(ctx, t.owner, t.repo, number, req)
	if err != nil {
		return classify(fmt.Sprintf("close issue #%d", number), err)
	}
	return nil
}
