package usecase

import "sync/atomic"

// opBudget is the shared per-run cap on tracker mutations. Workers acquire
// one unit before every mutation attempt, retries included, so a retry
// loop can never exceed what remains. The counter is passed into each
// worker explicitly rather than living as process-wide state.
type opBudget struct {
	remaining atomic.Int64
}

func newOpBudget(n int) *opBudget {
	b := &opBudget{}
	b.remaining.Store(int64(n))
	return b
}

// acquire reserves one operation. It reports false once the budget is
// spent; over-decrementing below zero is harmless.
func (b *opBudget) acquire() bool {
	return b.remaining.Add(-1) >= 0
}

// exhausted reports whether no operations remain.
func (b *opBudget) exhausted() bool {
	return b.remaining.Load() <= 0
}
