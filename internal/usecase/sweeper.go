// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/issue-sweeper/internal/domain"
	"github.com/naka-gawa/issue-sweeper/internal/gateway"
)

// errBudgetExhausted signals that the per-run operation budget was spent
// before an issue's mutations could be applied. It is informational, not a
// failure: the issue is reported as deferred and picked up next run.
var errBudgetExhausted = errors.New("operation budget exhausted")

// IssueFailure records a per-issue API failure surfaced in the run summary.
type IssueFailure struct {
	Number int    `json:"number"`
	Action string `json:"action"`
	Error  string `json:"error"`
}

// Summary is the result of one sweep over the repository's open issues.
type Summary struct {
	Evaluated int            `json:"evaluated"`
	Marked    int            `json:"marked"`
	Unmarked  int            `json:"unmarked"`
	Closed    int            `json:"closed"`
	NoAction  int            `json:"no_action"`
	Deferred  int            `json:"deferred"`
	Failures  []IssueFailure `json:"failures,omitempty"`
}

// Sweeper is the use case for one staleness sweep. It evaluates every open
// issue against the policy and executes the resulting decisions through
// the tracker.
type Sweeper struct {
	tracker gateway.Tracker
	policy  domain.Policy
	workers int
	budget  int
	logger  *log.Logger

	// retryInterval seeds the exponential backoff; tests shrink it.
	retryInterval time.Duration
}

// NewSweeper creates a new Sweeper instance.
func NewSweeper(tracker gateway.Tracker, policy domain.Policy, budget, workers int, logger *log.Logger) *Sweeper {
	return &Sweeper{
		tracker:       tracker,
		policy:        policy,
		workers:       workers,
		budget:        budget,
		logger:        logger,
		retryInterval: backoff.DefaultInitialInterval,
	}
}

// Sweep performs the main business logic: list open issues, decide each
// one's lifecycle action at a single point in time, and apply the actions
// concurrently under the shared operation budget. Per-issue failures are
// collected into the summary rather than aborting the batch; only the
// initial listing can fail the run as a whole.
func (s *Sweeper) Sweep(ctx context.Context) (*Summary, error) {
	s.logger.Println("Usecase: Starting staleness sweep...")

	issues, err := s.tracker.ListOpenIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open issues: %w", err)
	}

	now := time.Now()
	budget := newOpBudget(s.budget)
	summary := &Summary{Evaluated: len(issues)}

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)

	for _, issue := range issues {
		issue := issue
		decision := domain.Evaluate(issue, s.policy, now)
		if decision == domain.NoAction {
			summary.NoAction++
			continue
		}
		if budget.exhausted() {
			summary.Deferred++
			continue
		}

		eg.Go(func() error {
			err := s.apply(egCtx, issue, decision, budget)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				switch decision {
				case domain.MarkStale:
					summary.Marked++
				case domain.UnmarkStale:
					summary.Unmarked++
				case domain.CloseIssue:
					summary.Closed++
				}
			case errors.Is(err, errBudgetExhausted):
				summary.Deferred++
			default:
				summary.Failures = append(summary.Failures, IssueFailure{
					Number: issue.Number,
					Action: decision.String(),
					Error:  err.Error(),
				})
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Number < summary.Failures[j].Number
	})

	s.logger.Printf("Usecase: Sweep complete: %d marked, %d unmarked, %d closed, %d deferred, %d failed.",
		summary.Marked, summary.Unmarked, summary.Closed, summary.Deferred, len(summary.Failures))
	return summary, nil
}

// mutation is a single tracker call belonging to a decision.
type mutation struct {
	op   string
	call func(ctx context.Context) error
}

// plan expands a decision into its ordered tracker mutations.
func (s *Sweeper) plan(issue domain.Issue, decision domain.Decision) []mutation {
	n := issue.Number
	switch decision {
	case domain.MarkStale:
		// The comment must land before the label. Both calls bump the
		// issue's updated_at, and the unmark check compares updated_at
		// against the labeled event time: labeling last keeps a freshly
		// marked issue from reading as updated after it was marked.
		var muts []mutation
		if s.policy.StaleMessage != "" {
			muts = append(muts, mutation{
				op: "post stale comment",
				call: func(ctx context.Context) error {
					return s.tracker.CreateComment(ctx, n, s.policy.StaleMessage)
				},
			})
		}
		return append(muts, mutation{
			op: "add stale label",
			call: func(ctx context.Context) error {
				return s.tracker.AddLabel(ctx, n, s.policy.StaleLabel)
			},
		})
	case domain.UnmarkStale:
		return []mutation{{
			op: "remove stale label",
			call: func(ctx context.Context) error {
				return s.tracker.RemoveLabel(ctx, n, s.policy.StaleLabel)
			},
		}}
	case domain.CloseIssue:
		var muts []mutation
		if s.policy.CloseMessage != "" {
			muts = append(muts, mutation{
				op: "post close comment",
				call: func(ctx context.Context) error {
					return s.tracker.CreateComment(ctx, n, s.policy.CloseMessage)
				},
			})
		}
		return append(muts, mutation{
			op: "close issue",
			call: func(ctx context.Context) error {
				return s.tracker.CloseIssue(ctx, n)
			},
		})
	default:
		return nil
	}
}

// apply executes a decision's mutations in order. Each attempt, retries
// included, draws one unit from the budget first; RateLimited and
// Transient tracker errors are retried with exponential backoff while
// Unauthorized and NotFound fail the issue immediately.
func (s *Sweeper) apply(ctx context.Context, issue domain.Issue, decision domain.Decision, budget *opBudget) error {
	s.logger.Printf("  Issue #%d: %s", issue.Number, decision)
	for _, m := range s.plan(issue, decision) {
		if err := s.applyMutation(ctx, m, budget); err != nil {
			if errors.Is(err, errBudgetExhausted) {
				return err
			}
			return fmt.Errorf("%s: %w", m.op, err)
		}
	}
	return nil
}

func (s *Sweeper) applyMutation(ctx context.Context, m mutation, budget *opBudget) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval
	bo.MaxElapsedTime = 2 * time.Minute

	return backoff.Retry(func() error {
		if !budget.acquire() {
			return backoff.Permanent(errBudgetExhausted)
		}
		err := m.call(ctx)
		if err == nil {
			return nil
		}
		var te *gateway.TrackerError
		if errors.As(err, &te) && te.Retryable() {
			return err // Retryable - backoff will retry
		}
		return backoff.Permanent(err) // Non-retryable - stop immediately
	}, backoff.WithContext(bo, ctx))
}
