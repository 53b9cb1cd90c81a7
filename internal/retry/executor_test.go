package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cnxpopulate/internal/logging"
)

// flaky fails transiently until it has been called succeedOn times.
type flaky struct {
	calls     int
	succeedOn int
	fatal     error
}

func (f *flaky) run(ctx context.Context) error {
	f.calls++
	if f.fatal != nil && f.calls == f.succeedOn {
		return f.fatal
	}
	if f.calls < f.succeedOn {
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	}
	return nil
}

func fastExecutor(maxAttempts int) *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(maxAttempts, WithInitialDelay(time.Millisecond), WithJitter(0)),
	)
}

func TestExecutor_SucceedsFirstTime(t *testing.T) {
	op := &flaky{succeedOn: 1}
	require.NoError(t, fastExecutor(3).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	op := &flaky{succeedOn: 4}
	require.NoError(t, fastExecutor(5).Execute(context.Background(), op.run))
	assert.Equal(t, 4, op.calls)
}

func TestExecutor_StopsOnFatalError(t *testing.T) {
	fatal := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	op := &flaky{succeedOn: 2, fatal: fatal}

	err := fastExecutor(5).Execute(context.Background(), op.run)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 2, op.calls)
}

func TestExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	op := &flaky{succeedOn: 100}

	err := fastExecutor(2).Execute(context.Background(), op.run)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "08006", pgErr.Code)
	assert.Equal(t, 3, op.calls, "one attempt plus two retries")
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &flaky{succeedOn: 2}
	assert.Error(t, fastExecutor(0).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(-1, WithInitialDelay(time.Hour), WithMaxDelay(time.Hour), WithJitter(0)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	op := &flaky{succeedOn: 100}

	executor = executor.WithOnRetry(func(int, error, time.Duration) { cancel() })
	err := executor.Execute(ctx, op.run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_WithOnRetry(t *testing.T) {
	base := fastExecutor(5)
	var attempts []int
	withCallback := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	op := &flaky{succeedOn: 3}
	require.NoError(t, withCallback.Execute(context.Background(), op.run))
	assert.Equal(t, []int{0, 1}, attempts)
	assert.Nil(t, base.onRetry, "WithOnRetry must not modify the receiver")
}

func TestLogRetries(t *testing.T) {
	logger := logging.NewRecordingLogger()
	op := &flaky{succeedOn: 2}

	executor := fastExecutor(3).WithOnRetry(LogRetries(logger, "connect"))
	require.NoError(t, executor.Execute(context.Background(), op.run))

	msgs := logger.Messages("info")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "connect failed")
	assert.Contains(t, msgs[0], "retry 1")
}

func TestNewExecutor_NilArgsPanic(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}
