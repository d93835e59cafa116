package domain

import "time"

// Evaluate decides the next lifecycle action for a single open issue.
// It is a pure function: given the same issue, policy and clock it always
// returns the same decision, and it never fails on a valid policy.
//
// The lifecycle forms a small state machine over open issues:
// fresh issues become stale once their last update is old enough, stale
// issues become fresh again when they see activity (if the policy says so),
// and stale issues that stay quiet long enough are closed.
func Evaluate(issue Issue, p Policy, now time.Time) Decision {
	if len(p.OnlyLabels) > 0 && !issue.HasAnyLabel(p.OnlyLabels) {
		return NoAction
	}
	if issue.HasAnyLabel(p.ExemptLabels) {
		return NoAction
	}

	if !issue.HasLabel(p.StaleLabel) {
		if now.Sub(issue.UpdatedAt) >= p.StaleAfter {
			return MarkStale
		}
		return NoAction
	}

	// The stale label is present. When the tracker could not tell us when
	// it was applied, fall back to the last update time: the close clock
	// then runs from the most recent activity, which can only delay the
	// close, never rush it.
	markedAt := issue.UpdatedAt
	if issue.StaleMarkedAt != nil {
		markedAt = *issue.StaleMarkedAt
	}

	if p.RemoveLabelOnUpdate && issue.UpdatedAt.After(markedAt) {
		return UnmarkStale
	}
	if now.Sub(markedAt) >= p.CloseAfterStale {
		return CloseIssue
	}
	return NoAction
}
