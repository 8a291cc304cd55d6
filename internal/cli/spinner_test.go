package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Solving box.toml")
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Rendering segment.svg")
	s.Start()
	s.Stop()
	s.Stop() // second stop must not panic or block
}

func TestSpinnerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Solving shelf.json")
	s.Start()

	cancel()

	// The animation goroutine exits on its own once the context dies.
	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context cancellation")
	}

	if !s.Cancelled() {
		t.Error("Cancelled() should report true after context cancellation")
	}
}

func TestSpinnerStopsOnContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Rendering box.png")
	s.Start()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context timeout")
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Solving box.toml")
	s.Start()
	s.StopWithSuccess("Rendered 2 format(s)")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Solving box.toml")
	s.Start()
	s.StopWithError("manifest not found")
}
