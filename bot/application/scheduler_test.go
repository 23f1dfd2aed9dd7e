package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerSurvivesFailuresAndPanics(t *testing.T) {
	var calls atomic.Int32
	publish := func(ctx context.Context) error {
		switch calls.Add(1) {
		case 1:
			return errors.New("upload failed")
		case 2:
			panic("publisher blew up")
		default:
			return nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewScheduler(5*time.Millisecond, publish).Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("scheduler made only %d ticks", calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestSchedulerStopsImmediatelyOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewScheduler(time.Hour, func(context.Context) error { return nil }).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not return for a cancelled context")
	}
}
