package lance

import (
	"container/heap"
	"fmt"
)

// graphCore is the layered-graph state shared by the mutable builder and the
// sealed index: the node table, the vector accessor, the distance strategy,
// and the entry point. The builder mutates it; after Seal() only read paths
// remain reachable.
type graphCore struct {
	// accessor borrows read access to the vector collection
	accessor VectorAccessor

	// distance is the configured metric strategy
	distance Distance

	// distanceKind names the metric for introspection
	distanceKind DistanceKind

	// nodes is the node table indexed by vector id; nil until inserted
	nodes []*graphNode

	// size is the number of inserted nodes
	size int

	// dim is the vector width, captured from the first inserted vector
	dim int

	// entryPoint is the node id every search and every insertion starts from
	entryPoint uint32

	// maxLevel is the highest layer with at least one node; -1 when empty.
	// The entry point always lives at this layer.
	maxLevel int
}

// distanceTo computes the distance between query and the stored vector for
// id. A missing vector means a neighbor edge points outside the accessor,
// which is an internal-consistency fault, surfaced as ErrOutOfRange.
func (g *graphCore) distanceTo(query []float32, id uint32) (float32, error) {
	vec, ok := g.accessor.Get(id)
	if !ok {
		return 0, fmt.Errorf("node %d: %w", id, ErrOutOfRange)
	}
	return g.distance.Calculate(query, vec), nil
}

// searchLayer performs greedy best-first expansion on one layer of the graph.
//
// Given a query vector, an entry node and a candidate-list bound ef, it
// returns up to ef nodes from the layer closest to the query, ordered by
// ascending distance.
//
// HEAP-BASED ALGORITHM:
// Two heaps drive the expansion:
//   - candidates (min-heap): frontier to explore, closest first
//   - results (max-heap): best ef nodes found, worst on top for O(log ef) eviction
//
// The loop pops the nearest frontier candidate; once the result set is full
// and the nearest remaining candidate is farther than the worst result, no
// reachable node can improve the results and the search terminates. That
// monotonic bound is what keeps the search sub-linear, and it also
// guarantees termination: the frontier only shrinks once no insertions pass
// the bound, and a finite graph has finitely many unvisited nodes.
//
// If the entry node has no neighbors at the layer, the result degenerates to
// the singleton entry node. Fewer than ef results are returned only when
// graph connectivity from the entry point runs out first.
//
// The visited set must be fresh (or freshly Reset) for this invocation.
func (g *graphCore) searchLayer(query []float32, entry uint32, ef, layer int, visited *visitedSet) ([]candidate, error) {
	// Candidates heap: nodes to explore (min-heap)
	candidates := newMinHeap()
	defer putMinHeap(candidates)

	// Results heap: best ef nodes (max-heap)
	results := newMaxHeap()
	defer putMaxHeap(results)

	d, err := g.distanceTo(query, entry)
	if err != nil {
		return nil, err
	}

	visited.Visit(entry)
	heap.Push(candidates, candidate{id: entry, distance: d})
	heap.Push(results, candidate{id: entry, distance: d})

	// Main expansion loop
	for candidates.Len() > 0 {
		current := heap.Pop(candidates).(candidate)

		// Early termination: the result set cannot improve further
		if results.Len() >= ef && current.distance > (*results)[0].distance {
			break
		}

		node := g.nodes[current.id]
		if layer >= len(node.neighbors) {
			continue
		}

		for _, neighborID := range node.neighbors[layer] {
			if visited.Visited(neighborID) {
				continue
			}
			visited.Visit(neighborID)

			nd, err := g.distanceTo(query, neighborID)
			if err != nil {
				return nil, err
			}

			if results.Len() < ef || nd < (*results)[0].distance {
				heap.Push(candidates, candidate{id: neighborID, distance: nd})
				heap.Push(results, candidate{id: neighborID, distance: nd})

				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	// Extract ascending by distance (pop farthest-first, fill backwards)
	out := make([]candidate, results.Len())
	for i := results.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(candidate)
	}

	return out, nil
}

// greedyDescend narrows from a starting node down through layers
// [from, downTo], greedily moving to the closest neighbor at each layer
// until a local minimum is reached, then dropping one layer. This is the
// ef=1 narrowing phase shared by insertion and top-level queries: it cheaply
// lands in a good neighborhood before multi-candidate search begins.
//
// Returns the closest node found and its distance to the query.
func (g *graphCore) greedyDescend(query []float32, start uint32, startDist float32, from, downTo int) (uint32, float32, error) {
	curr, currDist := start, startDist

	for lc := from; lc >= downTo; lc-- {
		changed := true
		for changed {
			changed = false
			node := g.nodes[curr]

			if lc >= len(node.neighbors) {
				continue
			}

			for _, neighborID := range node.neighbors[lc] {
				d, err := g.distanceTo(query, neighborID)
				if err != nil {
					return 0, 0, err
				}

				if d < currDist {
					currDist = d
					curr = neighborID
					changed = true
				}
			}
		}
	}

	return curr, currDist, nil
}
