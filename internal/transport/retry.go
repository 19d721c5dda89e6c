// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// contextSleep is the default SleepFunc.
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy describes how many attempts are made and how long to wait
// between them.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay returns the wait before attempt n+1, given that attempt n (1-based)
// just failed.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// attempts returns the attempt budget, never less than one.
func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// run calls fn until it succeeds or the budget is spent. Every failure is
// treated the same; only a done context stops the loop early.
func (p RetryPolicy) run(ctx context.Context, sleep SleepFunc, fn func(attempt int) error) error {
	budget := p.attempts()
	var lastErr error

	for attempt := 1; attempt <= budget; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return &TransportError{Op: "request", Err: ctx.Err()}
		}
		if attempt == budget {
			break
		}

		delay := p.Delay(attempt)
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", budget).
			Dur("retry_in", delay).
			Msg("chat request failed, retrying")

		if err := sleep(ctx, delay); err != nil {
			return &TransportError{Op: "request", Err: err}
		}
	}

	return &RetriesExhaustedError{Attempts: budget, Last: lastErr}
}
