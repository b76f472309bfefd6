// Package retry provides bounded retry with a fixed inter-attempt delay for upstream API calls
package retry

import (
	"context"
	stderr "errors"
	"fmt"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

// Config defines retry behavior configuration
type Config struct {
	// MaxAttempts is the total number of attempts (including the initial one)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`

	// Delay is the fixed pause between attempts
	Delay time.Duration `yaml:"delay" json:"delay"`

	// RetryableErrors is a list of error codes that should trigger retry
	RetryableErrors []errors.ErrorCode `yaml:"retryable_errors" json:"retryable_errors"`

	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-" json:"-"`
}

// DefaultConfig returns a sensible default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Delay:       15 * time.Second,
		RetryableErrors: []errors.ErrorCode{
			errors.ErrCodeConnectionTimeout,
			errors.ErrCodeConnectionFailed,
			errors.ErrCodeConnectionRefused,
			errors.ErrCodeNetworkError,
			errors.ErrCodeOperationTimeout,
		},
	}
}

// Retryer handles retry logic with a constant backoff.
// An upstream HTTP status error is never retried; only connection
// establishment failures and timeouts consume additional attempts.
type Retryer struct {
	config Config
}

// New creates a new Retryer with the given configuration
func New(config Config) *Retryer {
	// Apply defaults for zero values
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.Delay <= 0 {
		config.Delay = 15 * time.Second
	}

	return &Retryer{config: config}
}

// Do executes the given function with retry logic
func (r *Retryer) Do(fn func() error) error {
	return r.DoWithContext(context.Background(), func(ctx context.Context) error {
		return fn()
	})
}

// DoWithContext executes the given function with retry logic and context support
func (r *Retryer) DoWithContext(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil // Success
		}

		lastErr = err

		if !r.shouldRetry(err, attempt) {
			return err
		}

		if attempt < r.config.MaxAttempts {
			delay := r.config.Delay

			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, err, delay)
			}

			// Wait for delay or context cancellation
			select {
			case <-ctx.Done():
				return fmt.Errorf("operation canceled after %d attempts: %w", attempt, ctx.Err())
			case <-time.After(delay):
				// Continue to next attempt
			}
		}
	}

	// All attempts exhausted
	return fmt.Errorf("max retry attempts (%d) exceeded: %w", r.config.MaxAttempts, lastErr)
}

// shouldRetry determines if an error is retryable
func (r *Retryer) shouldRetry(err error, attempt int) bool {
	// Don't retry if we've reached max attempts
	if attempt >= r.config.MaxAttempts {
		return false
	}

	var exporterErr *errors.ExporterError
	if stderr.As(err, &exporterErr) {
		if exporterErr.Retryable {
			return true
		}

		for _, code := range r.config.RetryableErrors {
			if exporterErr.Code == code {
				return true
			}
		}
	}

	return false
}

// WithMaxAttempts returns a new Retryer with modified max attempts
func (r *Retryer) WithMaxAttempts(attempts int) *Retryer {
	newConfig := r.config
	newConfig.MaxAttempts = attempts
	return New(newConfig)
}

// WithDelay returns a new Retryer with a modified inter-attempt delay
func (r *Retryer) WithDelay(delay time.Duration) *Retryer {
	newConfig := r.config
	newConfig.Delay = delay
	return New(newConfig)
}

// WithOnRetry returns a new Retryer with a retry callback
func (r *Retryer) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Retryer {
	newConfig := r.config
	newConfig.OnRetry = callback
	return New(newConfig)
}
