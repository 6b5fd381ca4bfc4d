package lance

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SearchResult is one answer to a top-k query: a vector id and its distance
// to the query under the graph's configured metric.
type SearchResult struct {
	ID       uint32
	Distance float32
}

// GraphIndex is the sealed, queryable graph. It is immutable: no method
// mutates the node table, the entry point, or the accessor, so any number
// of goroutines may query it in parallel with no coordination. All search
// scratch state (visited set, candidate and result queues) is allocated or
// checked out per invocation.
//
// A GraphIndex is obtained from GraphBuilder.Seal or BuildGraph.
type GraphIndex struct {
	core *graphCore

	// defaultEfSearch is used by the fluent search builder when the caller
	// does not supply an explicit efSearch
	defaultEfSearch int
}

// Len returns the number of vectors in the graph.
func (g *GraphIndex) Len() int {
	return g.core.size
}

// Dimensions returns the vector width, or 0 for an empty graph.
func (g *GraphIndex) Dimensions() int {
	return g.core.dim
}

// MaxLevel returns the graph's top layer, or -1 for an empty graph.
func (g *GraphIndex) MaxLevel() int {
	return g.core.maxLevel
}

// EntryPoint returns the id of the node every query descends from. Only
// meaningful when Len() > 0. The entry point always resides at MaxLevel().
func (g *GraphIndex) EntryPoint() uint32 {
	return g.core.entryPoint
}

// DistanceKind returns the metric the graph was built with.
func (g *GraphIndex) DistanceKind() DistanceKind {
	return g.core.distanceKind
}

// Search returns the k nearest vectors to query, ordered by ascending
// distance. efSearch bounds the candidate width of the layer-0 expansion
// and must be at least k - recall improves with larger values at the cost
// of latency.
//
// THE ALGORITHM:
// PHASE 1: greedy ef=1 descent from the entry point down to layer 1,
// mirroring insertion's narrowing phase.
// PHASE 2: full best-first expansion at layer 0 with ef=efSearch.
// PHASE 3: the k closest of those candidates become the result.
//
// An empty graph yields an empty result, not an error. Fewer than k results
// are returned only when the graph holds fewer than k vectors.
func (g *GraphIndex) Search(query []float32, k, efSearch int) ([]SearchResult, error) {
	if k < 1 {
		return nil, &ConfigError{Field: "k", Reason: "must be at least 1"}
	}
	if efSearch < k {
		return nil, &ConfigError{
			Field:  "efSearch",
			Reason: fmt.Sprintf("must be at least k (%d < %d)", efSearch, k),
		}
	}

	if g.core.size == 0 {
		return []SearchResult{}, nil
	}

	if len(query) != g.core.dim {
		return nil, &DimensionError{Expected: g.core.dim, Actual: len(query)}
	}

	// Preprocess a copy of the query per the metric; stored vectors were
	// preprocessed at insertion time
	prepared, err := g.core.distance.Preprocess(query)
	if err != nil {
		return nil, err
	}

	// PHASE 1: narrow through the upper layers
	curr := g.core.entryPoint
	if g.core.maxLevel > 0 {
		entryDist, err := g.core.distanceTo(prepared, curr)
		if err != nil {
			return nil, err
		}

		curr, _, err = g.core.greedyDescend(prepared, curr, entryDist, g.core.maxLevel, 1)
		if err != nil {
			return nil, err
		}
	}

	// PHASE 2: comprehensive expansion at layer 0
	visited := newVisitedSet(len(g.core.nodes))
	candidates, err := g.core.searchLayer(prepared, curr, efSearch, 0, visited)
	if err != nil {
		return nil, err
	}

	// PHASE 3: top k, already ascending
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{ID: c.id, Distance: c.distance}
	}

	return results, nil
}

// SearchBatch answers one top-k query per entry in queries, fanning the
// queries out across goroutines. Results arrive in query order. The first
// failing query cancels the batch.
//
// This is safe because the sealed graph is read-only: every goroutine gets
// its own scratch state and they share nothing mutable.
func (g *GraphIndex) SearchBatch(queries [][]float32, k, efSearch int) ([][]SearchResult, error) {
	results := make([][]SearchResult, len(queries))

	var group errgroup.Group
	for i, query := range queries {
		group.Go(func() error {
			r, err := g.Search(query, k, efSearch)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
