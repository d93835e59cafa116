package domain

import (
	"fmt"
	"time"
)

// Policy is the immutable staleness configuration for a run.
// It is validated once at load time; Evaluate assumes a valid policy.
type Policy struct {
	// StaleAfter is how long an issue may go without updates before it
	// is marked stale. Must be positive.
	StaleAfter time.Duration
	// CloseAfterStale is how long an issue may remain stale before it is
	// closed. Zero means immediately eligible.
	CloseAfterStale time.Duration
	// StaleLabel is the label applied to mark an issue stale.
	StaleLabel string
	// StaleMessage is posted as a comment when marking stale.
	// Empty means no comment is posted.
	StaleMessage string
	// CloseMessage is posted as a comment before closing.
	// Empty means no comment is posted.
	CloseMessage string
	// ExemptLabels unconditionally suppress staleness processing.
	ExemptLabels []string
	// OnlyLabels restricts processing to issues carrying at least one of
	// them. Empty means no restriction.
	OnlyLabels []string
	// RemoveLabelOnUpdate removes the stale label again when an issue was
	// updated after being marked, resetting its staleness clock.
	RemoveLabelOnUpdate bool
}

// Validate rejects malformed policies eagerly, before any issue is
// evaluated. Negative durations are never valid policy values.
func (p Policy) Validate() error {
	if p.StaleAfter <= 0 {
		return fmt.Errorf("staleAfter must be positive, got %s", p.StaleAfter)
	}
	if p.CloseAfterStale < 0 {
		return fmt.Errorf("closeAfterStale must not be negative, got %s", p.CloseAfterStale)
	}
	if p.StaleLabel == "" {
		return fmt.Errorf("staleLabel must not be empty")
	}
	return nil
}
