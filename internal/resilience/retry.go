// Package resilience wraps the external raster fetches with retry and
// transient-error classification. The pure computation layers never retry:
// the only transient failures in this system are network ones.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls exponential backoff with jitter.
type RetryConfig struct {
	// Op labels the operation in retry logs.
	Op string

	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry; each subsequent
	// retry doubles it, capped at MaxBackoff. Jitter of ±25% is applied.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// ShouldRetry overrides the default IsTransient check when set.
	ShouldRetry func(err error) bool
}

// DefaultRetryConfig suits scene listing and export downloads.
func DefaultRetryConfig(op string) RetryConfig {
	return RetryConfig{
		Op:             op,
		MaxAttempts:    4,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute,
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = time.Minute
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = IsTransient
	}
	return cfg
}

// Retry executes fn until it succeeds, returns a non-transient error,
// exhausts its attempts, or the context is canceled.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.ShouldRetry(err) || attempt == cfg.MaxAttempts-1 {
			return zero, lastErr
		}

		delay := backoff(attempt, cfg)
		zap.L().Warn("retrying after transient failure",
			zap.String("op", cfg.Op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := math.Min(
		float64(cfg.InitialBackoff)*math.Pow(2, float64(attempt)),
		float64(cfg.MaxBackoff),
	)
	// ±25% jitter keeps concurrent pipelines from retrying in lockstep.
	delay *= 1 + (rand.Float64()*0.5 - 0.25)
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
