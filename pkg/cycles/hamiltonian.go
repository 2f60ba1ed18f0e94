package cycles

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/graph"
)

// ErrInfeasible is returned when no Hamiltonian cycle satisfies the
// compatibility graph, either because the search space was exhausted or
// because the step budget ran out before a cycle was found.
var ErrInfeasible = errors.New("no valid cycle exists for these constraints")

// DefaultMaxSteps bounds the number of candidate extensions a single search
// may try. Hamiltonian-cycle search is exponential in the worst case; the
// budget turns a pathological exclusion graph into a bounded failure instead
// of a hung process.
const DefaultMaxSteps = 1_000_000

// Options control a single cycle search.
type Options struct {
	// Rand drives candidate shuffling. A nil Rand makes the search
	// deterministic (input order), which is mainly useful in tests.
	Rand *rand.Rand

	// MaxSteps caps candidate extensions; 0 applies DefaultMaxSteps and a
	// negative value disables the bound entirely.
	MaxSteps int
}

// Result carries the cycle found by a successful search.
type Result struct {
	Cycle []int64 // Node IDs in cycle order, starting at the search's start node
	Steps int     // Candidate extensions tried
}

// frame holds the backtracking state for one position in the path: the
// candidates not yet tried as the next hop from that position.
type frame struct {
	candidates []int64
}

// FindCycle searches for a Hamiltonian cycle in g starting from start,
// visiting all n nodes and returning to start. The search is an iterative
// depth-first walk with explicit backtracking: candidates at each depth are
// shuffled once when the depth is entered, then consumed head-first, so
// backtracking never re-tries an extension.
//
// The choice of start node does not affect feasibility, only which rotation
// of the cycle is produced. Exhausting all extensions, or the step budget,
// returns ErrInfeasible.
func FindCycle(g graph.Directed, start int64, n int, opts Options) (*Result, error) {
	if n < 2 {
		return nil, fmt.Errorf("cycle search requires at least 2 nodes, got %d", n)
	}
	if g.Node(start) == nil {
		return nil, fmt.Errorf("start node %d is not in the graph", start)
	}

	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	path := make([]int64, 1, n)
	path[0] = start
	visited := make(map[int64]bool, n)
	visited[start] = true

	frames := make([]frame, 1, n)
	frames[0] = frame{candidates: nextCandidates(g, start, visited, opts.Rand)}

	steps := 0
	for len(frames) > 0 {
		top := &frames[len(frames)-1]

		if len(top.candidates) == 0 {
			// Dead end: undo the move that entered this depth.
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				last := path[len(path)-1]
				delete(visited, last)
				path = path[:len(path)-1]
			}
			continue
		}

		next := top.candidates[0]
		top.candidates = top.candidates[1:]

		steps++
		if maxSteps > 0 && steps > maxSteps {
			return nil, fmt.Errorf("search budget of %d steps exhausted: %w", maxSteps, ErrInfeasible)
		}

		path = append(path, next)
		visited[next] = true

		if len(path) == n {
			// Sole acceptance condition: the last node must close back
			// to the start.
			if g.HasEdgeFromTo(next, start) {
				return &Result{Cycle: path, Steps: steps}, nil
			}
			delete(visited, next)
			path = path[:len(path)-1]
			continue
		}

		frames = append(frames, frame{candidates: nextCandidates(g, next, visited, opts.Rand)})
	}

	return nil, ErrInfeasible
}

// nextCandidates returns the unvisited successors of from, shuffled when an
// RNG is supplied. Visited nodes are filtered here so a candidate list never
// proposes a revisit.
func nextCandidates(g graph.Directed, from int64, visited map[int64]bool, rng *rand.Rand) []int64 {
	var candidates []int64
	iter := g.From(from)
	for iter.Next() {
		id := iter.Node().ID()
		if !visited[id] {
			candidates = append(candidates, id)
		}
	}

	if rng != nil {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	return candidates
}
