package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/santa-ring/pkg/cycles"
	"github.com/ritzau/santa-ring/pkg/graph"
	"github.com/ritzau/santa-ring/pkg/logging"
	"github.com/ritzau/santa-ring/pkg/model"
)

// ErrInvalidInput is returned for malformed requests, kept separate from
// ErrInfeasible so callers can tell "your request was malformed" apart from
// "no solution exists for these constraints".
var ErrInvalidInput = errors.New("invalid scheduling request")

// ErrInfeasible mirrors the cycles sentinel so callers only need this
// package to classify failures.
var ErrInfeasible = cycles.ErrInfeasible

// Options control a single scheduling request.
type Options struct {
	// Seed fixes the RNG for reproducible plans; 0 seeds from the clock.
	Seed int64

	// MaxSteps caps the search, see cycles.Options. 0 uses the default
	// budget, negative disables it.
	MaxSteps int
}

// Compute builds the compatibility graph for the participants and searches
// it for a gift ring. Each call is independent and keeps all state on its own
// stack, so concurrent calls need no coordination.
//
// Exclusions are directional: A listing B only forbids A→B. Exclusion sets
// must reference names present in the participant list; unknown names are
// rejected as invalid input rather than ignored, since a typo would otherwise
// silently drop the constraint.
func Compute(participants []model.Participant, opts Options) (*model.Plan, error) {
	requestID := uuid.New().String()

	if err := validate(participants); err != nil {
		return nil, err
	}

	cg := graph.Build(participants)
	logging.Debug("built compatibility graph",
		"requestID", requestID,
		"participants", cg.Len(),
		"edges", cg.EdgeCount())

	if err := cycles.Precheck(cg.Graph()); err != nil {
		var dead *cycles.DeadEndError
		if errors.As(err, &dead) {
			name := cg.Name(dead.ID)
			if dead.Incoming {
				return nil, fmt.Errorf("no one is allowed to give to %q: %w", name, ErrInfeasible)
			}
			return nil, fmt.Errorf("%q has no allowed recipients: %w", name, ErrInfeasible)
		}
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	// Start from the first participant in input order; the start only picks
	// the rotation of the ring, never whether one exists.
	startID, _ := cg.ID(participants[0].Name)
	result, err := cycles.FindCycle(cg.Graph(), startID, cg.Len(), cycles.Options{
		Rand:     rng,
		MaxSteps: opts.MaxSteps,
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("found cycle", "requestID", requestID, "steps", result.Steps, "seed", seed)

	plan := &model.Plan{
		ID:          requestID,
		Assignments: make([]model.Assignment, 0, len(result.Cycle)),
		Steps:       result.Steps,
	}
	for i, giverID := range result.Cycle {
		receiverID := result.Cycle[(i+1)%len(result.Cycle)]
		plan.Assignments = append(plan.Assignments, model.Assignment{
			Giver:    cg.Name(giverID),
			Receiver: cg.Name(receiverID),
		})
	}

	return plan, nil
}

// validate rejects malformed requests before any search work starts.
func validate(participants []model.Participant) error {
	if len(participants) < 2 {
		return fmt.Errorf("%w: need at least 2 participants, got %d", ErrInvalidInput, len(participants))
	}

	names := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.Name == "" {
			return fmt.Errorf("%w: participant with empty name", ErrInvalidInput)
		}
		if names[p.Name] {
			return fmt.Errorf("%w: duplicate participant %q", ErrInvalidInput, p.Name)
		}
		names[p.Name] = true
	}

	for _, p := range participants {
		for _, excluded := range p.Excludes {
			if excluded == p.Name {
				return fmt.Errorf("%w: participant %q excludes themselves", ErrInvalidInput, p.Name)
			}
			if !names[excluded] {
				return fmt.Errorf("%w: participant %q excludes unknown name %q", ErrInvalidInput, p.Name, excluded)
			}
		}
	}

	return nil
}
