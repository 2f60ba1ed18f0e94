package watcher

import (
	"context"
	"time"
)

// Debouncer batches rapid file system events so an editor's save burst
// (write, truncate, rename) triggers one recompute instead of several
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run accumulates events and flushes after a quiet period, or after maxWait
// if events keep arriving without a gap
func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet       *time.Timer
		quietC      <-chan time.Time
		maxWaitC    <-chan time.Time
		accumulated []string
	)

	flush := func() {
		if len(accumulated) == 0 {
			return
		}

		d.output <- ChangeEvent{
			Paths:     accumulated,
			Timestamp: time.Now(),
		}

		accumulated = nil
		if quiet != nil {
			quiet.Stop()
		}
		quietC = nil
		maxWaitC = nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			accumulated = append(accumulated, event.Paths...)

			if quiet == nil {
				quiet = time.NewTimer(d.quietPeriod)
			} else {
				quiet.Stop()
				quiet.Reset(d.quietPeriod)
			}
			quietC = quiet.C

			if maxWaitC == nil {
				maxWaitC = time.After(d.maxWait)
			}

		case <-quietC:
			flush()

		case <-maxWaitC:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
