package cycles

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// DeadEndError reports a node that can never be part of a Hamiltonian cycle
// because it has no possible edge in one direction. It unwraps to
// ErrInfeasible so callers can match the error class while still reading the
// offending node for diagnostics.
type DeadEndError struct {
	ID       int64
	Incoming bool // true: nobody may give to this node; false: it may give to nobody
}

func (e *DeadEndError) Error() string {
	if e.Incoming {
		return fmt.Sprintf("node %d has no possible incoming edge", e.ID)
	}
	return fmt.Sprintf("node %d has no possible outgoing edge", e.ID)
}

func (e *DeadEndError) Unwrap() error {
	return ErrInfeasible
}

// Precheck rejects graphs that cannot contain a Hamiltonian cycle without
// running the search: a node with zero outgoing or zero incoming edges, or a
// graph that is not a single strongly connected component. These are
// necessary conditions only; passing Precheck does not guarantee a cycle
// exists. Correctness never depends on this check, the search would reach
// the same verdict by exhaustion.
func Precheck(g graph.Directed) error {
	n := 0
	nodes := g.Nodes()
	for nodes.Next() {
		n++
		id := nodes.Node().ID()

		if !g.From(id).Next() {
			return &DeadEndError{ID: id}
		}
		if !g.To(id).Next() {
			return &DeadEndError{ID: id, Incoming: true}
		}
	}

	if n < 2 {
		return fmt.Errorf("graph has %d nodes, need at least 2: %w", n, ErrInfeasible)
	}

	// A Hamiltonian cycle strongly connects every node, so the whole graph
	// must form one SCC.
	sccs := topo.TarjanSCC(g)
	if len(sccs) != 1 {
		return fmt.Errorf("graph splits into %d strongly connected components: %w", len(sccs), ErrInfeasible)
	}

	return nil
}
