// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// RetryPolicy controls how throttled requests are retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts. 0 means unbounded.
	MaxAttempts int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// Multiplier scales the delay after each retry. Values <= 1 keep the
	// delay fixed.
	Multiplier float64

	// MaxDelay caps the delay. 0 means no cap.
	MaxDelay time.Duration
}

// RateLimitPolicy returns the default policy for throttled embedding calls:
// wait a fixed 60 seconds and retry until the provider accepts the request.
func RateLimitPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 0,
		Delay:       60 * time.Second,
		Multiplier:  1,
	}
}

// NoDelayPolicy retries immediately, up to maxAttempts (0 = unbounded).
func NoDelayPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, Multiplier: 1}
}

// Validate checks the policy fields.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 0 {
		return fmt.Errorf("%w: MaxAttempts must not be negative", ErrInvalidPolicy)
	}
	if p.Delay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidPolicy)
	}
	if p.Multiplier < 0 || math.IsNaN(p.Multiplier) {
		return fmt.Errorf("%w: Multiplier must not be negative", ErrInvalidPolicy)
	}
	return nil
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.Delay
	if p.Multiplier > 1 && attempt > 1 {
		scaled := float64(delay) * math.Pow(p.Multiplier, float64(attempt-1))
		if scaled >= math.MaxInt64 {
			delay = time.Duration(math.MaxInt64)
		} else {
			delay = time.Duration(scaled)
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Do runs operation until it succeeds, returns an error retryable rejects,
// or the attempts run out. A nil retryable retries every error.
// Returns the error from the last attempt, or the context error if ctx is
// done first.
func (p RetryPolicy) Do(ctx context.Context, operation func() error, retryable func(error) bool) error {
	if err := p.Validate(); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		// Check context before attempting
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return err
		}

		delay := p.Backoff(attempt)
		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", p.MaxAttempts, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
