package lance

// graphNode is a vertex in the layered graph: a vector's identity plus its
// neighbor-id lists, one list per layer it participates in.
//
// Each node exists in layers 0 through level (inclusive). Layer 0 is
// mandatory; higher layers are present only up to the level assigned at
// insertion time. The node's identity is its id - neighbor lists mutate
// during construction, the id never does.
//
// Invariants maintained by the builder:
//   - no list ever contains the node's own id (no self-loops)
//   - after pruning, no list exceeds the configured per-layer maximum degree
type graphNode struct {
	// id is the vector's dense id in the accessor
	id uint32

	// level is the maximum layer this node participates in
	level int

	// neighbors stores neighbor ids at each layer
	// neighbors[0] = neighbors at layer 0
	// neighbors[i] = neighbors at layer i, for i <= level
	neighbors [][]uint32
}

// newGraphNode creates a node with empty neighbor lists for every layer up
// to level.
//
// Each list is preallocated with capacity mMax+1: mMax for the retained
// degree, plus one slot for the transient over-append that happens when a
// reverse edge lands just before the list is pruned back down. Degree is
// tracked by len, so no separate counter is needed.
func newGraphNode(id uint32, level, mMax int) *graphNode {
	neighbors := make([][]uint32, level+1)
	for i := range neighbors {
		neighbors[i] = make([]uint32, 0, mMax+1)
	}

	return &graphNode{
		id:        id,
		level:     level,
		neighbors: neighbors,
	}
}

// degree returns the number of neighbors at the given layer, or 0 when the
// node does not participate in it.
func (n *graphNode) degree(layer int) int {
	if layer >= len(n.neighbors) {
		return 0
	}
	return len(n.neighbors[layer])
}
