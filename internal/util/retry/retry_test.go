package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDoSuccess(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := Do(context.Background(), operation)

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got: %d", attempts)
	}
}

func TestDoSuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := Do(context.Background(), operation, WithInitialDelay(time.Millisecond))

	if err != nil {
		t.Errorf("expected no error after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got: %d", attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("persistent error")
	}

	err := Do(context.Background(), operation,
		WithMaxRetries(2),
		WithInitialDelay(time.Millisecond),
	)

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got: %d", attempts)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error should mention attempt count, got: %v", err)
	}
}

func TestDoFatalErrorStopsRetries(t *testing.T) {
	t.Parallel()
	attempts := 0
	operation := func() error {
		attempts++
		return Fatal(errors.New("bad private key"))
	}

	err := Do(context.Background(), operation, WithInitialDelay(time.Millisecond))

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("fatal error should not be retried, got %d attempts", attempts)
	}
}

func TestDoContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		cancel()
		return errors.New("transient")
	}

	err := Do(ctx, operation, WithInitialDelay(100*time.Millisecond))

	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got: %d", attempts)
	}
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	if IsFatal(errors.New("plain")) {
		t.Error("plain error should not be fatal")
	}
	if !IsFatal(Fatal(errors.New("fatal"))) {
		t.Error("Fatal() error should be fatal")
	}

	wrapped := errors.Join(errors.New("outer"), Fatal(errors.New("inner")))
	if !IsFatal(wrapped) {
		t.Error("fatal error should be detected through wrapping")
	}

	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should be nil")
	}
}
