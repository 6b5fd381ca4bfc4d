/*
Package lance provides an approximate nearest-neighbor search library for Go
built on HNSW (Hierarchical Navigable Small World) graphs.

Lance implements the graph side of a vector search engine: a layered
probabilistic skip-graph that is built incrementally, then sealed into an
immutable structure that many goroutines can query in parallel without any
coordination. Vector storage is abstracted behind a small accessor interface
so the same graph code runs over an in-memory matrix today and a disk-backed
column store tomorrow.

# HIERARCHICAL SKIP-LIST-LIKE STRUCTURE

Layer 2: Few nodes, long-range connections (highways)
Layer 1: More nodes, medium-range connections (state roads)
Layer 0: All nodes, short-range connections (local streets)

Search starts at the top layer and descends, getting more refined at each
level. Each node is present at layer 0 and independently has a geometrically
decaying chance of being present at each successive layer, so higher layers
contain exponentially fewer nodes.

# Quick Start

Build a graph over a dense matrix of vectors and query it:

	package main

	import (
	    "fmt"
	    "log"

	    lance "github.com/nairajay2k/lance2"
	)

	func main() {
	    // 384-dimensional vectors, row-major
	    vectors := make([][]float32, 0)
	    // ... populate vectors with your embeddings ...

	    accessor, err := lance.NewMatrixAccessorFromRows(vectors)
	    if err != nil {
	        log.Fatal(err)
	    }

	    graph, err := lance.BuildGraph(accessor, lance.Cosine, lance.DefaultGraphConfig())
	    if err != nil {
	        log.Fatal(err)
	    }

	    query := make([]float32, 384)
	    // ... populate query vector ...
	    results, err := graph.NewSearch().
	        WithQuery(query).
	        WithK(10).
	        WithEfSearch(100).
	        Execute()
	    if err != nil {
	        log.Fatal(err)
	    }

	    for i, r := range results {
	        fmt.Printf("%d. ID=%d, Distance=%.4f\n", i+1, r.ID, r.Distance)
	    }
	}

# Build Then Seal

Construction and querying are two distinct phases with two distinct types:

  - GraphBuilder owns the mutable graph. Insertions are single-writer; the
    builder is not safe for concurrent use.
  - Seal() consumes the builder and returns a GraphIndex. The sealed graph
    and every node in it are immutable, so concurrent read-only queries need
    no locks at all.

This split statically prevents the classic bug of mutating a graph while
other goroutines are traversing it.

# Tuning

Three parameters control the recall/latency tradeoff:

  - MMax: maximum neighbors kept per node per layer. Higher values work
    better for high intrinsic dimensionality; 12-48 covers most use cases.
  - EfConstruction: candidate width during insertion. Higher values build a
    better graph, slower. Typical: 100-500.
  - efSearch: candidate width at query time, supplied per query. Must be at
    least k. Higher values trade latency for recall.
*/
package lance
