// Package retry wraps units of work with bounded retry, configurable
// backoff, optional jitter and transient/permanent failure classification.
package retry

import (
	"math/rand"
	"time"

	"github.com/ingotproject/ingot/pkg/ingoterrors"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode int

const (
	// BackoffExponential doubles the delay on every retry.
	BackoffExponential BackoffMode = iota
	// BackoffLinear grows the delay proportionally to the retry number.
	BackoffLinear
)

// Policy is the immutable retry configuration for one executor.
// A nil policy, or MaxRetries of zero, means execute exactly once.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the computed delay. Must be at least InitialDelay.
	MaxDelay time.Duration
	Backoff  BackoffMode
	// Jitter adds a uniform random value in [0, delay/4) to each delay.
	Jitter bool
}

// DefaultPolicy retries transient failures three times, starting at 100ms
// and backing off exponentially to at most 10s.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Backoff:      BackoffExponential,
		Jitter:       true,
	}
}

// Validate fails fast on an inconsistent policy.
func (p *Policy) Validate() error {
	if p.MaxRetries < 0 {
		return &ingoterrors.ErrInvalidConfig{Name: "MaxRetries", Value: p.MaxRetries, Message: "must not be negative"}
	}
	if p.InitialDelay < 0 {
		return &ingoterrors.ErrInvalidConfig{Name: "InitialDelay", Value: p.InitialDelay, Message: "must not be negative"}
	}
	if p.MaxDelay < p.InitialDelay {
		return &ingoterrors.ErrInvalidConfig{Name: "MaxDelay", Value: p.MaxDelay, Message: "must be at least InitialDelay"}
	}
	return nil
}

// Delay computes the wait before the given 1-based retry attempt.
// With jitter disabled the result is deterministic:
// initialDelay*2^(attempt-1) for exponential backoff, initialDelay*attempt
// for linear, capped at MaxDelay in both cases.
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.InitialDelay == 0 {
		return 0
	}

	var delay time.Duration
	switch p.Backoff {
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
		if delay/time.Duration(attempt) != p.InitialDelay {
			delay = p.MaxDelay
		}
	default:
		delay = p.InitialDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay <= 0 || (p.MaxDelay > 0 && delay >= p.MaxDelay) {
				delay = p.MaxDelay
				break
			}
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter && delay >= 4 {
		delay += time.Duration(rand.Int63n(int64(delay / 4)))
	}
	return delay
}
