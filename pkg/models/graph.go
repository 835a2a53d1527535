package models

// Adjacency is an index over a workflow's edge list giving O(1) access to the
// outgoing edges of any node. It is built once, at validation or execution
// start, and never mutated afterwards.
type Adjacency struct {
	outgoing map[string][]*WorkflowEdge
	incoming map[string][]*WorkflowEdge
}

// BuildAdjacency indexes the workflow's edges by source and target node ID.
func BuildAdjacency(w *Workflow) *Adjacency {
	adj := &Adjacency{
		outgoing: make(map[string][]*WorkflowEdge, len(w.Nodes)),
		incoming: make(map[string][]*WorkflowEdge, len(w.Nodes)),
	}

	for _, edge := range w.Edges {
		adj.outgoing[edge.Source] = append(adj.outgoing[edge.Source], edge)
		adj.incoming[edge.Target] = append(adj.incoming[edge.Target], edge)
	}

	return adj
}

// Outgoing returns the edges leaving a node, in declaration order.
func (a *Adjacency) Outgoing(nodeID string) []*WorkflowEdge {
	return a.outgoing[nodeID]
}

// Incoming returns the edges arriving at a node, in declaration order.
func (a *Adjacency) Incoming(nodeID string) []*WorkflowEdge {
	return a.incoming[nodeID]
}

// OutgoingBranch returns the single outgoing edge labeled with the given
// branch, or nil when the condition node has no edge for that branch.
func (a *Adjacency) OutgoingBranch(nodeID string, branch BranchLabel) *WorkflowEdge {
	for _, edge := range a.outgoing[nodeID] {
		if edge.Branch != nil && *edge.Branch == branch {
			return edge
		}
	}

	return nil
}

// HasCycle reports whether the directed graph contains a cycle, via
// depth-first search with three-color marking.
func (a *Adjacency) HasCycle(nodes []*WorkflowNode) bool {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current DFS path
		black = 2 // fully explored
	)

	color := make(map[string]int, len(nodes))

	var visit func(id string) bool

	visit = func(id string) bool {
		color[id] = grey

		for _, edge := range a.outgoing[id] {
			switch color[edge.Target] {
			case grey:
				return true
			case white:
				if visit(edge.Target) {
					return true
				}
			}
		}

		color[id] = black

		return false
	}

	for _, node := range nodes {
		if color[node.ID] == white && visit(node.ID) {
			return true
		}
	}

	return false
}
