package graph

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/santa-ring/pkg/model"
)

// CompatGraph is the directed compatibility graph for one scheduling request.
// An edge A→B means A is allowed to give to B. The graph is derived from the
// participant list and never persisted.
type CompatGraph struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // participant name -> graph ID
	names  map[int64]string // graph ID -> participant name
	nextID int64
}

// New creates an empty compatibility graph.
func New() *CompatGraph {
	return &CompatGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// Build constructs the compatibility graph for the given participants:
// an edge A→B for every ordered pair with A ≠ B and B not in A's exclusion
// set. Callers are expected to have validated the participant list first;
// unknown names inside exclusion sets simply produce no edge removal here.
func Build(participants []model.Participant) *CompatGraph {
	cg := New()

	for _, p := range participants {
		cg.AddParticipant(p.Name)
	}

	for _, giver := range participants {
		excluded := make(map[string]bool, len(giver.Excludes))
		for _, name := range giver.Excludes {
			excluded[name] = true
		}

		for _, receiver := range participants {
			if receiver.Name == giver.Name || excluded[receiver.Name] {
				continue
			}
			cg.addEdge(giver.Name, receiver.Name)
		}
	}

	return cg
}

// AddParticipant adds a participant node to the graph. Adding the same name
// twice is a no-op.
func (cg *CompatGraph) AddParticipant(name string) {
	if _, exists := cg.ids[name]; exists {
		return
	}

	cg.ids[name] = cg.nextID
	cg.names[cg.nextID] = name
	cg.graph.AddNode(simple.Node(cg.nextID))
	cg.nextID++
}

// addEdge marks giver→receiver as a possible assignment. Self-loops are
// never created; gonum would panic on them and the model forbids them anyway.
func (cg *CompatGraph) addEdge(giver, receiver string) {
	giverID, ok := cg.ids[giver]
	if !ok {
		return
	}
	receiverID, ok := cg.ids[receiver]
	if !ok || giverID == receiverID {
		return
	}

	if !cg.graph.HasEdgeFromTo(giverID, receiverID) {
		cg.graph.SetEdge(cg.graph.NewEdge(cg.graph.Node(giverID), cg.graph.Node(receiverID)))
	}
}

// Graph returns the underlying directed graph.
func (cg *CompatGraph) Graph() *simple.DirectedGraph {
	return cg.graph
}

// Len returns the number of participants in the graph.
func (cg *CompatGraph) Len() int {
	return len(cg.ids)
}

// ID returns the graph ID for a participant name.
func (cg *CompatGraph) ID(name string) (int64, bool) {
	id, ok := cg.ids[name]
	return id, ok
}

// Name returns the participant name for a graph ID, or "" if unknown.
func (cg *CompatGraph) Name(id int64) string {
	return cg.names[id]
}

// HasEdge reports whether giver is allowed to give to receiver.
func (cg *CompatGraph) HasEdge(giver, receiver string) bool {
	giverID, ok := cg.ids[giver]
	if !ok {
		return false
	}
	receiverID, ok := cg.ids[receiver]
	if !ok {
		return false
	}
	return cg.graph.HasEdgeFromTo(giverID, receiverID)
}

// Receivers returns the names of all participants the giver may give to.
func (cg *CompatGraph) Receivers(giver string) []string {
	id, ok := cg.ids[giver]
	if !ok {
		return nil
	}

	var receivers []string
	iter := cg.graph.From(id)
	for iter.Next() {
		receivers = append(receivers, cg.names[iter.Node().ID()])
	}
	return receivers
}

// EdgeCount returns the number of possible giver→receiver pairs.
func (cg *CompatGraph) EdgeCount() int {
	count := 0
	iter := cg.graph.Edges()
	for iter.Next() {
		count++
	}
	return count
}
