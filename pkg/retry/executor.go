package retry

import (
	"context"
	"time"

	retrygo "github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"

	"github.com/ingotproject/ingot/pkg/ingoterrors"
)

// Executor runs operations under a retry policy. Failures classified as
// transient are retried after a backoff delay until the retry budget is
// exhausted; permanent failures propagate immediately.
type Executor struct {
	policy      *Policy
	shouldRetry func(error) bool
	onRetry     func(attempt int, err error)
}

// ExecutorOption customises an Executor.
type ExecutorOption func(*Executor)

// WithClassifier replaces the default transient-error classifier.
func WithClassifier(shouldRetry func(error) bool) ExecutorOption {
	return func(e *Executor) {
		e.shouldRetry = shouldRetry
	}
}

// WithOnRetry registers a callback invoked before each retry with the
// 1-based number of the attempt that just failed.
func WithOnRetry(onRetry func(attempt int, err error)) ExecutorOption {
	return func(e *Executor) {
		e.onRetry = onRetry
	}
}

// NewExecutor creates an executor for the given policy. A nil policy means
// no retries: every operation executes exactly once.
func NewExecutor(policy *Policy, opts ...ExecutorOption) *Executor {
	e := &Executor{
		policy:      policy,
		shouldRetry: ingoterrors.IsTransient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs op, retrying per the policy on transient failures. The
// context is checked before every attempt and during backoff sleeps; on
// cancellation the context error is returned untouched.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if e.policy == nil || e.policy.MaxRetries == 0 {
		return op(ctx)
	}

	attempts := 0
	err := retrygo.Do(
		func() error {
			attempts++
			return op(ctx)
		},
		retrygo.Context(ctx),
		retrygo.Attempts(uint(e.policy.MaxRetries)+1),
		retrygo.RetryIf(e.shouldRetry),
		retrygo.LastErrorOnly(true),
		retrygo.DelayType(func(n uint, _ error, _ *retrygo.Config) time.Duration {
			// retry-go numbers retries from zero.
			return e.policy.Delay(int(n) + 1)
		}),
		retrygo.OnRetry(func(n uint, err error) {
			// retry-go also reports the final failed attempt; only count
			// failures that a retry will actually follow.
			if int(n)+1 > e.policy.MaxRetries {
				return
			}
			log.WithError(err).Warnf("transient error on attempt %d of %d, will retry", n+1, e.policy.MaxRetries+1)
			if e.onRetry != nil {
				e.onRetry(int(n)+1, err)
			}
		}),
	)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if e.shouldRetry(err) && attempts > e.policy.MaxRetries {
		return &ingoterrors.ErrMaxRetriesExceeded{Attempts: attempts, LastError: err}
	}
	return err
}
