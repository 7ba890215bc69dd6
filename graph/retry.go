package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNodeTimeout is returned when a node exceeds its WithTimeout deadline.
var ErrNodeTimeout = errors.New("node timed out")

// RetryConfig configures retry behavior for nodes
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors func(error) bool // Determines if an error should trigger retry
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: func(_ error) bool {
			return true
		},
	}
}

// NodeOption configures a node at registration.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	writes  []string
	retry   *RetryConfig
	timeout time.Duration
}

// WithWrites declares the only fields the node may update. Compile checks
// the names against the schema and the executor rejects any other key.
func WithWrites(fields ...string) NodeOption {
	return func(o *nodeOptions) {
		o.writes = append(o.writes, fields...)
	}
}

// WithRetry retries the node on failure. A nil config uses DefaultRetryConfig.
func WithRetry(config *RetryConfig) NodeOption {
	return func(o *nodeOptions) {
		if config == nil {
			config = DefaultRetryConfig()
		}
		o.retry = config
	}
}

// WithTimeout bounds a single attempt of the node.
func WithTimeout(d time.Duration) NodeOption {
	return func(o *nodeOptions) {
		o.timeout = d
	}
}

// Retry wraps fn with retry logic.
func Retry[S any](name string, fn NodeFunc[S], config *RetryConfig) NodeFunc[S] {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)

	return func(ctx context.Context, state S) (Update, error) {
		var lastErr error
		delay := config.InitialDelay

		for attempt := 1; attempt <= attempts; attempt++ {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			default:
			}

			update, err := fn(ctx, state)
			if err == nil {
				return update, nil
			}
			lastErr = err

			if config.RetryableErrors != nil && !config.RetryableErrors(err) {
				return nil, fmt.Errorf("non-retryable error in %s: %w", name, err)
			}

			if attempt < attempts {
				select {
				case <-time.After(delay):
					next := time.Duration(float64(delay) * config.BackoffFactor)
					if config.MaxDelay > 0 {
						next = min(next, config.MaxDelay)
					}
					delay = next
				case <-ctx.Done():
					return nil, fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
				}
			}
		}

		return nil, fmt.Errorf("max retries (%d) exceeded for %s: %w", attempts, name, lastErr)
	}
}

// Timeout wraps fn so that it fails with ErrNodeTimeout after d. The node
// receives a context that is cancelled at the deadline.
func Timeout[S any](name string, fn NodeFunc[S], d time.Duration) NodeFunc[S] {
	return func(ctx context.Context, state S) (Update, error) {
		timeoutCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			update Update
			err    error
		}
		resultChan := make(chan result, 1)

		go func() {
			update, err := safeCall(timeoutCtx, name, fn, state)
			resultChan <- result{update: update, err: err}
		}()

		select {
		case res := <-resultChan:
			return res.update, res.err
		case <-timeoutCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: node %s timed out after %v", ErrNodeTimeout, name, d)
		}
	}
}

// safeCall runs fn and converts a panic into an error.
func safeCall[S any](ctx context.Context, name string, fn NodeFunc[S], state S) (update Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in node %s: %v", name, r)
		}
	}()
	return fn(ctx, state)
}
