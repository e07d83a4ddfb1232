// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resilience protects calls to the external dependency-parsing
// service with retries and a circuit breaker. Detection itself is
// deterministic and is never retried.
package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries      int                          // retry attempts after the first call
	InitialInterval time.Duration                // delay before the first retry
	MaxInterval     time.Duration                // cap on any single delay
	Multiplier      float64                      // backoff growth per attempt
	Jitter          bool                         // add up to 25% random jitter
	OnRetry         func(attempt int, err error) // invoked before each retry
}

// DefaultRetryConfig returns the defaults used for the parser service.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

// RetryWithBackoff executes an operation with exponential backoff.
// The delay before attempt n is InitialInterval * Multiplier^(n-1), capped at
// MaxInterval. Non-retryable errors are returned immediately.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation RetryableOperation) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(config, attempt)):
			}

			if config.OnRetry != nil {
				config.OnRetry(attempt, lastErr)
			}
		}

		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !ClassifyError(err).IsRetryable() {
			return err
		}
	}

	return lastErr
}

func backoff(config RetryConfig, attempt int) time.Duration {
	delay := float64(config.InitialInterval)
	for i := 1; i < attempt; i++ {
		delay *= config.Multiplier
	}
	if config.Jitter {
		delay += delay * 0.25 * rand.Float64()
	}
	if config.MaxInterval > 0 {
		return min(time.Duration(delay), config.MaxInterval)
	}
	return time.Duration(delay)
}

// RetryableFunc is a retryable function that returns a value.
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// RetryWithResult executes fn with retry logic and returns its last result.
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn RetryableFunc[T]) (T, error) {
	var result T
	err := RetryWithBackoff(ctx, config, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}

// RetryWithCircuitBreaker runs every attempt through the breaker.
func RetryWithCircuitBreaker(ctx context.Context, config RetryConfig, cb *CircuitBreaker, operation RetryableOperation) error {
	return RetryWithBackoff(ctx, config, func(ctx context.Context) error {
		return cb.Execute(ctx, operation)
	})
}

// IsRetryable reports whether an error should be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).IsRetryable()
}
