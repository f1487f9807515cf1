package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithBackoff_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0

	fn := func() error {
		attempts++
		if attempts == 3 {
			return nil
		}
		return errors.New("temporary error")
	}

	err := WithBackoff(ctx, 5, 10*time.Millisecond, fn)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxRetriesExceeded(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0
	expectedError := errors.New("still failing")

	fn := func() error {
		attempts++
		return expectedError
	}

	err := WithBackoff(ctx, 3, 10*time.Millisecond, fn)
	if err == nil {
		t.Fatal("Expected error after max retries")
	}

	// Initial try + 3 retries = 4 total.
	if attempts != 4 {
		t.Errorf("Expected 4 attempts (initial + 3 retries), got %d", attempts)
	}

	if !errors.Is(err, expectedError) {
		t.Errorf("Expected error %v, got %v", expectedError, err)
	}
}

func TestWithBackoff_PermanentStopsImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	attempts := 0
	underlying := errors.New("bad request")

	fn := func() error {
		attempts++
		return Permanent(underlying)
	}

	err := WithBackoff(ctx, 5, 10*time.Millisecond, fn)
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for permanent error, got %d", attempts)
	}

	// The permanent wrapper is unwrapped before returning.
	if err != underlying {
		t.Errorf("Expected unwrapped error %v, got %v", underlying, err)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	fn := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	err := WithBackoff(ctx, 5, 10*time.Millisecond, fn)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWithBackoff_ZeroRetriesTriesOnce(t *testing.T) {
	t.Parallel()
	attempts := 0

	_ = WithBackoff(context.Background(), 0, time.Millisecond, func() error {
		attempts++
		return errors.New("nope")
	})

	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", attempts)
	}
}

func TestPermanent_Nil(t *testing.T) {
	t.Parallel()
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestIsPermanent(t *testing.T) {
	t.Parallel()
	if !IsPermanent(Permanent(errors.New("x"))) {
		t.Error("Expected IsPermanent to be true for wrapped error")
	}
	if IsPermanent(errors.New("x")) {
		t.Error("Expected IsPermanent to be false for plain error")
	}
}

func TestSleep_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Sleep did not return promptly on cancellation")
	}
}
