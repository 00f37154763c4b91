package core

import (
	"fmt"
	"sync"
)

// CallLimiter budgets backend calls for one workflow run. A zero budget
// means unlimited.
type CallLimiter struct {
	mu     sync.Mutex
	budget int
	used   int
}

// NewCallLimiter creates a limiter with the given call budget.
func NewCallLimiter(budget int) *CallLimiter {
	return &CallLimiter{budget: budget}
}

// Reserve claims one call from the budget and fails once it is exhausted.
// A failed Reserve consumes nothing, so Used never exceeds the budget.
func (cl *CallLimiter) Reserve() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.budget > 0 && cl.used >= cl.budget {
		return fmt.Errorf("backend call budget of %d exhausted", cl.budget)
	}
	cl.used++
	return nil
}

// Used returns how many calls have been reserved so far.
func (cl *CallLimiter) Used() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return cl.used
}
