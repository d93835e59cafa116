// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"slices"
	"time"
)

// Issue is a read-only snapshot of an open tracker issue.
// It is the core domain entity of this application; remote state is only
// ever mutated by the tracker gateway, never through this value.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Labels    []string  `json:"labels"`
	// StaleMarkedAt is the time the stale label was applied, when known.
	// Nil when the issue carries no stale label or the apply time could
	// not be resolved from the tracker's event history.
	StaleMarkedAt *time.Time `json:"stale_marked_at,omitempty"`
}

// HasLabel reports whether the issue carries the given label.
// Label membership is what matters; order is irrelevant.
func (i Issue) HasLabel(label string) bool {
	return slices.Contains(i.Labels, label)
}

// HasAnyLabel reports whether the issue carries at least one of the given labels.
func (i Issue) HasAnyLabel(labels []string) bool {
	for _, l := range labels {
		if i.HasLabel(l) {
			return true
		}
	}
	return false
}

// Decision is the single lifecycle action chosen for an issue in one run.
type Decision int

const (
	NoAction Decision = iota
	MarkStale
	UnmarkStale
	CloseIssue
)

func (d Decision) String() string {
	switch d {
	case NoAction:
		return "no-action"
	case MarkStale:
		return "mark-stale"
	case UnmarkStale:
		return "unmark-stale"
	case CloseIssue:
		return "close"
	default:
		return "unknown"
	}
}
