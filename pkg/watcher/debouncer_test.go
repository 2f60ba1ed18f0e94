package watcher

import (
	"context"
	"testing"
	"time"
)

func TestDebouncer_BatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// An editor save burst: several raw events in quick succession
	for i := 0; i < 3; i++ {
		input <- ChangeEvent{Paths: []string{"santa.toml"}, Timestamp: time.Now()}
	}

	select {
	case event := <-d.Output():
		if len(event.Paths) != 3 {
			t.Errorf("Expected 3 accumulated paths, got %d", len(event.Paths))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for debounced event")
	}

	// The burst must collapse into a single output event
	select {
	case extra := <-d.Output():
		t.Errorf("Expected one debounced event, also got %v", extra.Paths)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncer_FlushesOnInputClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Minute, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Paths: []string{"santa.toml"}, Timestamp: time.Now()}
	close(input)

	select {
	case event, ok := <-d.Output():
		if !ok {
			t.Fatal("Expected a flushed event before close")
		}
		if len(event.Paths) != 1 {
			t.Errorf("Expected 1 path, got %d", len(event.Paths))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for flush on close")
	}

	if _, ok := <-d.Output(); ok {
		t.Error("Expected output channel to close after input closed")
	}
}
