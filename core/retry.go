package core

import (
	"fmt"
	"time"
)

// RetryPolicy governs the request executor: MaxRetries counts retries after
// the first attempt, RetryDelay is the fixed pause between attempts (no
// backoff growth, no jitter), Timeout is the per-attempt deadline. A policy
// is constructed once per agent at initialization and never mutated.
type RetryPolicy struct {
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`
	Timeout    time.Duration `json:"timeout"`
}

// DefaultRetryPolicy mirrors the application defaults: three retries, five
// seconds apart, five minutes per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Timeout:    300 * time.Second,
	}
}

// Validate rejects policies that cannot govern a retry loop. Invalid
// policies are a construction-time configuration error, not an envelope.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("retry policy: max retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.RetryDelay < 0 {
		return fmt.Errorf("retry policy: retry delay must be >= 0, got %s", p.RetryDelay)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("retry policy: timeout must be > 0, got %s", p.Timeout)
	}
	return nil
}

// Attempts returns the total attempt budget (first attempt plus retries).
func (p RetryPolicy) Attempts() int { return p.MaxRetries + 1 }
