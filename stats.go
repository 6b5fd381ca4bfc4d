package lance

import "github.com/RoaringBitmap/roaring"

// GraphStats is a census of a sealed graph: how the layers are populated,
// how dense the adjacency is, and how much of the graph a layer-0 traversal
// from the entry point can actually reach.
type GraphStats struct {
	// Nodes is the total number of vectors in the graph
	Nodes int

	// MaxLevel is the top layer; -1 for an empty graph
	MaxLevel int

	// NodesPerLevel[i] counts nodes participating in layer i. Layer 0
	// always equals Nodes; higher layers decay geometrically.
	NodesPerLevel []int

	// EdgesPerLevel[i] counts directed edges at layer i
	EdgesPerLevel []int

	// AvgDegree is the mean layer-0 out-degree
	AvgDegree float64

	// Reachable counts nodes reachable from the entry point by following
	// layer-0 edges. Equal to Nodes in a well-formed graph; anything less
	// means orphans.
	Reachable int
}

// Stats walks the whole graph, so it is O(nodes + edges). It only reads, so
// it is safe to call concurrently with queries.
func (g *GraphIndex) Stats() GraphStats {
	stats := GraphStats{
		Nodes:    g.core.size,
		MaxLevel: g.core.maxLevel,
	}

	if g.core.size == 0 {
		return stats
	}

	stats.NodesPerLevel = make([]int, g.core.maxLevel+1)
	stats.EdgesPerLevel = make([]int, g.core.maxLevel+1)

	var layer0Edges int
	for _, node := range g.core.nodes {
		if node == nil {
			continue
		}

		for lc := 0; lc <= node.level && lc <= g.core.maxLevel; lc++ {
			stats.NodesPerLevel[lc]++
			stats.EdgesPerLevel[lc] += node.degree(lc)
		}
		layer0Edges += node.degree(0)
	}
	stats.AvgDegree = float64(layer0Edges) / float64(g.core.size)

	stats.Reachable = g.reachableFromEntry()

	return stats
}

// reachableFromEntry runs a breadth-first traversal over layer 0 starting at
// the entry point. The visited id set is a roaring bitmap: node ids stay
// compressed even for very large graphs, and cardinality is free at the end.
func (g *GraphIndex) reachableFromEntry() int {
	visited := roaring.New()
	visited.Add(g.core.entryPoint)

	queue := []uint32{g.core.entryPoint}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		node := g.core.nodes[curr]
		if node == nil || len(node.neighbors) == 0 {
			continue
		}

		for _, neighborID := range node.neighbors[0] {
			if visited.Contains(neighborID) {
				continue
			}
			visited.Add(neighborID)
			queue = append(queue, neighborID)
		}
	}

	return int(visited.GetCardinality())
}
