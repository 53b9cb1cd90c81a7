// Package retry re-runs archive operations that fail for transient reasons.
//
// Connecting to the archive and committing a populate transaction can fail
// because the server is restarting, the network hiccups, or a concurrent
// writer forced a serialization failure. An Executor retries such
// operations with exponential backoff; every other error is returned on
// the first attempt.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3)).
//	    WithOnRetry(retry.LogRetries(logger, "connect"))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
