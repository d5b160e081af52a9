package pipeline

import (
	"context"
	"math/rand"
	"time"
)

// retryConfig controls withRetry's backoff schedule.
type retryConfig struct {
	MaxAttempts int // total attempts, including the first; 3 means up to 2 retries
	BaseDelay   time.Duration
	Factor      float64
	JitterFrac  float64 // +/- fraction of the computed delay, e.g. 0.2 for +/-20%
}

// defaultRetryConfig is the policy shared by both LM-call stages: base
// 500ms, doubling each attempt, +/-20% jitter, up to two retries.
func defaultRetryConfig() retryConfig {
	return retryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Factor:      2,
		JitterFrac:  0.2,
	}
}

// withRetry runs fn up to cfg.MaxAttempts times, sleeping a jittered
// exponential backoff between attempts. It makes no further attempt once ctx
// is cancelled: if fn failed with ctx already done it returns fn's error, and
// if cancellation arrives during a backoff wait it returns ctx.Err().
func withRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			jittered := jitter(delay, cfg.JitterFrac)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered):
			}
			delay = time.Duration(float64(delay) * cfg.Factor)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// jitter returns d scaled by a random factor in [1-frac, 1+frac].
func jitter(d time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return d
	}
	offset := (rand.Float64()*2 - 1) * frac
	return time.Duration(float64(d) * (1 + offset))
}
