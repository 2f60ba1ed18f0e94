package cycles

import (
	"errors"
	"testing"
)

func TestPrecheck_CompleteGraphPasses(t *testing.T) {
	g := completeGraph(3)

	if err := Precheck(g); err != nil {
		t.Fatalf("Expected complete graph to pass, got: %v", err)
	}
}

func TestPrecheck_NoOutgoingEdge(t *testing.T) {
	// Node 2 can receive but never give
	g := buildGraph(3, [][2]int64{{0, 1}, {1, 0}, {0, 2}, {1, 2}})

	err := Precheck(g)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("Expected ErrInfeasible, got: %v", err)
	}

	var dead *DeadEndError
	if !errors.As(err, &dead) {
		t.Fatalf("Expected a DeadEndError, got: %v", err)
	}
	if dead.ID != 2 || dead.Incoming {
		t.Errorf("Expected outgoing dead end at node 2, got node %d (incoming=%t)", dead.ID, dead.Incoming)
	}
}

func TestPrecheck_NoIncomingEdge(t *testing.T) {
	// Node 0 can give but never receive
	g := buildGraph(3, [][2]int64{{0, 1}, {0, 2}, {1, 2}, {2, 1}})

	err := Precheck(g)

	var dead *DeadEndError
	if !errors.As(err, &dead) {
		t.Fatalf("Expected a DeadEndError, got: %v", err)
	}
	if dead.ID != 0 || !dead.Incoming {
		t.Errorf("Expected incoming dead end at node 0, got node %d (incoming=%t)", dead.ID, dead.Incoming)
	}
}

func TestPrecheck_SplitComponents(t *testing.T) {
	// Two disjoint rings joined one-way: every node has in- and out-edges
	// but the graph is not a single SCC, so no Hamiltonian cycle can exist
	g := buildGraph(4, [][2]int64{
		{0, 1}, {1, 0},
		{2, 3}, {3, 2},
		{0, 2},
	})

	err := Precheck(g)
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("Expected ErrInfeasible for split components, got: %v", err)
	}
}

func TestPrecheck_AgreesWithSearch(t *testing.T) {
	// Precheck is only a fast path: anything it rejects must also be
	// rejected by the exhaustive search
	graphs := []struct {
		name  string
		edges [][2]int64
	}{
		{"isolated node", [][2]int64{{0, 1}, {1, 2}, {2, 1}, {1, 0}, {0, 2}}},
		{"split rings", [][2]int64{{0, 1}, {1, 0}, {2, 3}, {3, 2}, {1, 2}}},
	}

	for _, tc := range graphs {
		g := buildGraph(4, tc.edges)
		if Precheck(g) == nil {
			continue
		}
		if _, err := FindCycle(g, 0, 4, Options{}); !errors.Is(err, ErrInfeasible) {
			t.Errorf("%s: Precheck rejected but search found: %v", tc.name, err)
		}
	}
}
