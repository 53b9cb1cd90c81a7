package retry

import (
	"context"
	"time"

	"github.com/vvka-141/cnxpopulate/pkg/cnx"
)

// Executor runs an operation until it succeeds, fails fatally, or runs out
// of attempts. Safe for concurrent use; WithOnRetry returns a copy.
type Executor struct {
	classifier cnx.ErrorClassifier
	strategy   cnx.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an executor.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier cnx.ErrorClassifier, strategy cnx.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls callback before every retry.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation and retries it while it fails transiently.
// It returns nil on success, the last error otherwise, or ctx.Err() when
// the context ends during a backoff wait.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}

// LogRetries returns a retry callback that reports each retry through logger.
func LogRetries(logger cnx.Logger, what string) func(attempt int, err error, delay time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		logger.Info("%s failed (%v), retrying in %s (retry %d)", what, err, delay.Round(time.Millisecond), attempt+1)
	}
}
