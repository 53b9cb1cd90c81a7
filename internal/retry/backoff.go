package retry

import (
	"math"
	"math/rand"
	"time"
)

// Backoff defaults.
const (
	DefaultInitialDelay = 100 * time.Millisecond
	DefaultMaxDelay     = 30 * time.Second
	DefaultMultiplier   = 2.0
	DefaultJitter       = 0.1
)

// ExponentialBackoff grows the delay by a constant factor per attempt,
// capped at a maximum and spread by a symmetric jitter.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
	maxAttempts  int // -1 = unlimited, 0 = no retries
	jitter       float64
	random       func() float64
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initialDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.maxDelay = d }
}

// WithMultiplier sets the growth factor between attempts.
func WithMultiplier(m float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.multiplier = m }
}

// WithJitter sets the jitter fraction; 0.1 spreads delays by +/-10%.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithRandom replaces the source of jitter, which must return values in [0, 1).
func WithRandom(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff creates a strategy allowing maxAttempts retries.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
		multiplier:   DefaultMultiplier,
		maxAttempts:  maxAttempts,
		jitter:       DefaultJitter,
		random:       rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NextDelay returns initialDelay * multiplier^attempt, capped and jittered.
// The jittered delay never exceeds the cap.
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt))
	if delay > float64(b.maxDelay) || math.IsInf(delay, 0) || math.IsNaN(delay) {
		delay = float64(b.maxDelay)
	}

	if b.jitter > 0 && b.random != nil {
		offset := (b.random()*2 - 1) * b.jitter
		delay *= 1 + offset
		if delay > float64(b.maxDelay) {
			delay = float64(b.maxDelay)
		}
	}

	return time.Duration(delay)
}

// MaxAttempts returns the number of retries allowed.
func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}

// MaxDelay returns the delay cap.
func (b *ExponentialBackoff) MaxDelay() time.Duration {
	return b.maxDelay
}
