package retry

import (
	"context"
	"testing"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

func TestRetryer_Success(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		return nil // Success on first attempt
	})

	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryer_RetryableError(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.Delay = 10 * time.Millisecond
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		if attempts < 3 {
			return errors.NewError(errors.ErrCodeConnectionTimeout, "connection timeout")
		}
		return nil // Success on third attempt
	})

	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryer_FatalStatusNotRetried(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 5
	config.Delay = 10 * time.Millisecond
	retryer := New(config)

	attempts := 0
	testErr := errors.NewError(errors.ErrCodeHTTPStatus, "unexpected status 503")

	err := retryer.Do(func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry), got %d", attempts)
	}
}

func TestRetryer_MaxAttemptsExceeded(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.Delay = 10 * time.Millisecond
	retryer := New(config)

	attempts := 0
	testErr := errors.NewError(errors.ErrCodeNetworkError, "network error")

	err := retryer.Do(func() error {
		attempts++
		return testErr // Always fail
	})

	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryer_FixedDelay(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 4
	config.Delay = 25 * time.Millisecond

	delays := []time.Duration{}
	config.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	retryer := New(config)

	err := retryer.Do(func() error {
		return errors.NewError(errors.ErrCodeNetworkError, "network error")
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}

	// Delay is constant between each of the 3 retries
	if len(delays) != 3 {
		t.Fatalf("Expected 3 delays, got %d", len(delays))
	}

	for i, delay := range delays {
		if delay != config.Delay {
			t.Errorf("Delay %d: expected %v, got %v", i, config.Delay, delay)
		}
	}
}

func TestRetryer_ContextCancellation(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 10
	config.Delay = 100 * time.Millisecond
	retryer := New(config)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	// Cancel after first failure
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := retryer.DoWithContext(ctx, func(ctx context.Context) error {
		attempts++
		return errors.NewError(errors.ErrCodeConnectionFailed, "connection failed")
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}

	// Should stop after context cancellation, not reach max attempts
	if attempts >= 10 {
		t.Errorf("Expected fewer than 10 attempts due to cancellation, got %d", attempts)
	}
}

func TestRetryer_OnRetryCallback(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 3
	config.Delay = 10 * time.Millisecond

	callbackCalled := 0
	var lastAttempt int
	var lastErr error
	var lastDelay time.Duration

	config.OnRetry = func(attempt int, err error, delay time.Duration) {
		callbackCalled++
		lastAttempt = attempt
		lastErr = err
		lastDelay = delay
	}

	retryer := New(config)

	testErr := errors.NewError(errors.ErrCodeNetworkError, "network error")
	_ = retryer.Do(func() error {
		return testErr
	})

	if callbackCalled != 2 {
		t.Errorf("Expected callback called 2 times, got %d", callbackCalled)
	}

	if lastAttempt != 2 {
		t.Errorf("Expected last attempt to be 2, got %d", lastAttempt)
	}

	if lastErr != testErr {
		t.Errorf("Expected last error to be testErr, got %v", lastErr)
	}

	if lastDelay <= 0 {
		t.Error("Expected positive delay")
	}
}

func TestRetryer_WithMethods(t *testing.T) {
	original := New(DefaultConfig())

	// Test WithMaxAttempts
	modified := original.WithMaxAttempts(10)
	if modified.config.MaxAttempts != 10 {
		t.Errorf("Expected MaxAttempts=10, got %d", modified.config.MaxAttempts)
	}
	// Original should be unchanged
	if original.config.MaxAttempts == 10 {
		t.Error("Original config was modified")
	}

	// Test WithDelay
	modified = original.WithDelay(500 * time.Millisecond)
	if modified.config.Delay != 500*time.Millisecond {
		t.Errorf("Expected Delay=500ms, got %v", modified.config.Delay)
	}

	// Test WithOnRetry
	called := false
	modified = original.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		called = true
	})
	modified = modified.WithDelay(time.Millisecond)

	_ = modified.Do(func() error {
		return errors.NewError(errors.ErrCodeNetworkError, "network error")
	})

	if !called {
		t.Error("OnRetry callback was not called")
	}
}

func TestRetryer_PlainErrorNotRetried(t *testing.T) {
	config := DefaultConfig()
	config.MaxAttempts = 5
	config.Delay = 10 * time.Millisecond
	retryer := New(config)

	attempts := 0
	err := retryer.Do(func() error {
		attempts++
		return context.DeadlineExceeded
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}

	if attempts != 1 {
		t.Errorf("Expected 1 attempt for a plain error, got %d", attempts)
	}
}

func BenchmarkRetryer_Success(b *testing.B) {
	retryer := New(DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = retryer.Do(func() error {
			return nil
		})
	}
}
