package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func captureSpinner(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := spinnerOutput
	spinnerOutput = &buf
	t.Cleanup(func() { spinnerOutput = prev })
	return &buf
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := output
	output = &buf
	t.Cleanup(func() { output = prev })
	return &buf
}

func TestSpinnerBasic(t *testing.T) {
	buf := captureSpinner(t)

	s := newSpinner("Opening store...")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Opening store...") {
		t.Errorf("spinner output %q does not contain message", buf.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	captureSpinner(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureSpinner(t)

	s := newSpinner("Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpin(t *testing.T) {
	captureSpinner(t)

	t.Run("success", func(t *testing.T) {
		out := captureOutput(t)
		err := spin(context.Background(), "Working...", "All done", func() error { return nil })
		if err != nil {
			t.Fatalf("spin() error = %v", err)
		}
		if !strings.Contains(out.String(), "All done") {
			t.Errorf("output %q does not contain done message", out.String())
		}
	})

	t.Run("failure", func(t *testing.T) {
		out := captureOutput(t)
		want := errors.New("boom")
		err := spin(context.Background(), "Working...", "All done", func() error { return want })
		if err != want {
			t.Fatalf("spin() error = %v, want %v", err, want)
		}
		if strings.Contains(out.String(), "All done") {
			t.Errorf("output %q contains done message after failure", out.String())
		}
	})
}
