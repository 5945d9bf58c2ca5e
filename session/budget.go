// Package session tracks per-session state the snapshot builder needs:
// cumulative inference spend against a budget, and session age.
package session

import (
	"sync"
	"time"
)

// Budget tracks how much of a session's cost allowance remains. The router
// never decrements it; the caller records spend after a request actually
// completes, then feeds Remaining into the next context snapshot.
type Budget struct {
	mu      sync.Mutex
	limit   float64
	spent   float64
	started time.Time
}

// NewBudget creates a budget with the given USD limit. A zero or negative
// limit means unlimited.
func NewBudget(limit float64) *Budget {
	return &Budget{
		limit:   limit,
		started: time.Now(),
	}
}

// Spend records a completed request's cost and returns the new remaining
// amount. Remaining clamps at zero; overspend is not an error here, it is a
// condition for the routing rules to react to.
func (b *Budget) Spend(cost float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cost > 0 {
		b.spent += cost
	}
	return b.remainingLocked()
}

// Remaining returns the unspent budget, clamped at zero. Unlimited budgets
// report a large positive value so budget conditions never fire.
func (b *Budget) Remaining() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remainingLocked()
}

// Spent returns the cumulative recorded spend.
func (b *Budget) Spent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent
}

// Elapsed returns how long the session has been running.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.started)
}

func (b *Budget) remainingLocked() float64 {
	if b.limit <= 0 {
		return unlimitedRemaining
	}
	if b.spent >= b.limit {
		return 0
	}
	return b.limit - b.spent
}

// unlimitedRemaining is what Remaining reports when no limit is set; large
// enough that any sane budget threshold stays unmatched.
const unlimitedRemaining = 1e9
