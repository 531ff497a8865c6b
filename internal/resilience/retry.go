// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resilience provides the fixed-delay retry combinator used for
// search, scrape, and arXiv calls.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultDelay    = 5 * time.Second
)

// Policy bounds a retried operation. The delay is constant between
// attempts: there is no exponential growth and no jitter.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy is three attempts separated by five seconds.
var DefaultPolicy = Policy{Attempts: defaultAttempts, Delay: defaultDelay}

// normalized fills zero fields with the defaults.
func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = defaultAttempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// Sleep waits for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was interrupted.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op up to p.Attempts times, waiting p.Delay after each failure
// except the last. It returns the first successful result. After the final
// failure the last error is returned wrapped with the attempt count.
//
// Cancelling ctx during a wait stops retrying; Do then returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	p = p.normalized()

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}
		if err := Sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", p.Attempts, lastErr)
}

// Fetch is Do for callers that degrade instead of failing: exhausted
// retries are logged under label and the zero value is returned.
func Fetch[T any](ctx context.Context, p Policy, log *zap.Logger, label string, op func(context.Context) (T, error)) T {
	if log == nil {
		log = zap.NewNop()
	}
	v, err := Do(ctx, p, op)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Info("fetch interrupted", zap.String("op", label), zap.Error(err))
		} else {
			log.Warn("fetch failed after retries", zap.String("op", label), zap.Error(err))
		}
	}
	return v
}
