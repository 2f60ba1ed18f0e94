package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/santa-ring/pkg/config"
	"github.com/ritzau/santa-ring/pkg/graph"
	"github.com/ritzau/santa-ring/pkg/logging"
	"github.com/ritzau/santa-ring/pkg/model"
	"github.com/ritzau/santa-ring/pkg/output"
	"github.com/ritzau/santa-ring/pkg/pubsub"
	"github.com/ritzau/santa-ring/pkg/roster"
	"github.com/ritzau/santa-ring/pkg/schedule"
	"github.com/ritzau/santa-ring/pkg/watcher"
)

func main() {
	f := pflag.NewFlagSet("santa-ring", pflag.ExitOnError)
	f.String("roster", "santa.toml", "Path to the TOML roster file")
	f.Bool("watch", false, "Recompute whenever the roster file changes")
	f.Bool("json", false, "Emit the plan as JSON on stdout instead of a report")
	f.Int64("seed", 0, "RNG seed for a reproducible plan (0 = random)")
	f.Int("max-steps", 0, "Search step budget (0 = default, negative = unbounded)")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.String("verbosity", "", "Log level: debug or trace (overrides -v)")
	if err := f.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	applyVerbosity(cfg)

	if cfg.Watch {
		runWatch(cfg)
		return
	}

	if err := runOnce(cfg); err != nil {
		os.Exit(1)
	}
}

// applyVerbosity maps --verbosity / repeated -v flags onto the log level
func applyVerbosity(cfg *config.Config) {
	switch {
	case cfg.Verbosity == "trace" || cfg.VerboseCnt >= 2:
		logging.SetLevel(slog.LevelDebug - 4)
	case cfg.Verbosity == "debug" || cfg.VerboseCnt == 1:
		logging.SetLevel(slog.LevelDebug)
	}
}

// runOnce loads the roster, computes a plan and prints it. Failures are
// printed in user-facing form; the returned error only signals the exit code.
func runOnce(cfg *config.Config) error {
	plan, participants, err := compute(cfg)
	if err != nil {
		output.PrintFailure(cfg.Roster, err, errors.Is(err, schedule.ErrInvalidInput))
		return err
	}

	if cfg.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			logging.Error("failed to encode plan", "error", err)
			return err
		}
		return nil
	}

	cg := graph.Build(participants)
	output.PrintPlan(cfg.Roster, cg.Len(), cg.EdgeCount(), plan)
	return nil
}

// compute runs one load+schedule round
func compute(cfg *config.Config) (*model.Plan, []model.Participant, error) {
	participants, err := roster.Load(cfg.Roster)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", schedule.ErrInvalidInput, err)
	}

	plan, err := schedule.Compute(participants, schedule.Options{
		Seed:     cfg.Seed,
		MaxSteps: cfg.MaxSteps,
	})
	if err != nil {
		return nil, nil, err
	}

	return plan, participants, nil
}

// runWatch computes once, then recomputes on every debounced roster change
// until interrupted. The watcher, debouncer and recompute loop are decoupled
// through the in-memory publisher so additional consumers (a future notifier,
// a test) can subscribe to plan updates without touching the pipeline.
func runWatch(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := pubsub.NewMemoryPublisher()
	defer publisher.Close()
	publisher.ConfigureTopic(pubsub.TopicPlan, pubsub.TopicConfig{BufferSize: 1})

	if err := watchRoster(ctx, cfg, publisher); err != nil {
		logging.Fatal("failed to start watch mode", "error", err)
	}

	sub, err := publisher.Subscribe(ctx, pubsub.TopicRoster)
	if err != nil {
		logging.Fatal("failed to subscribe to roster changes", "error", err)
	}

	recompute := func() {
		plan, participants, err := compute(cfg)
		if err != nil {
			output.PrintFailure(cfg.Roster, err, errors.Is(err, schedule.ErrInvalidInput))
			_ = publisher.Publish(pubsub.TopicPlan, "failed", pubsub.PlanUpdate{Error: err.Error()})
			return
		}

		cg := graph.Build(participants)
		output.PrintPlan(cfg.Roster, cg.Len(), cg.EdgeCount(), plan)
		_ = publisher.Publish(pubsub.TopicPlan, "computed", pubsub.PlanUpdate{
			Participants: cg.Len(),
			Steps:        plan.Steps,
		})
	}

	recompute()
	logging.Info("watching for roster changes, Ctrl-C to stop")

	for {
		select {
		case <-ctx.Done():
			logging.Info("shutting down")
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			fmt.Println()
			recompute()
		}
	}
}

// watchRoster wires the fsnotify watcher and debouncer to the roster topic
func watchRoster(ctx context.Context, cfg *config.Config, publisher pubsub.Publisher) error {
	rw, err := watcher.NewRosterWatcher(cfg.Roster)
	if err != nil {
		return err
	}
	if err := rw.Start(ctx); err != nil {
		return err
	}

	deb := watcher.NewDebouncer(rw.Events(), 200*time.Millisecond, 2*time.Second)
	deb.Start(ctx)

	go func() {
		for ev := range deb.Output() {
			_ = publisher.Publish(pubsub.TopicRoster, "changed", pubsub.RosterChange{
				Path: ev.Paths[0],
			})
		}
	}()

	return nil
}
