package lance

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// GraphConfig holds the construction parameters for one build. The values
// are fixed for the lifetime of the build; there is no runtime
// reconfiguration of an in-progress graph.
type GraphConfig struct {
	// MaxLevel caps the total number of layers. Level assignment truncates
	// here, so the graph never grows taller than MaxLevel layers.
	MaxLevel uint16

	// MMax is the maximum number of neighbors retained per node per layer
	// after pruning. Reasonable range is 2-100; 12-48 covers most use
	// cases. Higher values suit datasets with high intrinsic
	// dimensionality or high recall targets.
	MMax int

	// EfConstruction is the candidate-list width used during insertion
	// search. Higher values build a better-connected graph at higher build
	// cost. Typical: 100-500.
	EfConstruction int

	// SelectionPolicy picks retained neighbors from candidate sets.
	// Defaults to SelectHeuristic (the zero value).
	SelectionPolicy SelectionPolicy

	// Seed seeds level assignment. Zero means a random seed; any other
	// value makes builds reproducible for the same insertion order.
	Seed uint64
}

// DefaultGraphConfig returns recommended default construction parameters:
// 16 layers maximum, 16 neighbors per node per layer, candidate width 200,
// diversity-aware neighbor selection.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		MaxLevel:        16,
		MMax:            16,
		EfConstruction:  200,
		SelectionPolicy: SelectHeuristic,
	}
}

// Validate rejects an unusable configuration. It runs before any insertion,
// so a misconfigured builder never touches graph state.
func (c GraphConfig) Validate() error {
	if c.MaxLevel < 1 {
		return &ConfigError{Field: "maxLevel", Reason: "must be at least 1"}
	}
	if c.MMax < 1 {
		return &ConfigError{Field: "mMax", Reason: "must be at least 1"}
	}
	if c.EfConstruction < 1 {
		return &ConfigError{Field: "efConstruction", Reason: "must be at least 1"}
	}
	if c.SelectionPolicy != SelectHeuristic && c.SelectionPolicy != SelectSimple {
		return &ConfigError{Field: "selectionPolicy", Reason: "unknown policy"}
	}
	return nil
}

// GraphBuilder grows a graph one vector at a time and seals it into an
// immutable GraphIndex when construction finishes.
//
// Construction is inherently single-writer: each insertion both reads the
// graph (to find insertion points) and writes it (new edges, pruning of
// other nodes' lists), so the builder is NOT safe for concurrent use.
// Serialize insertions, then Seal() and share the result freely.
type GraphBuilder struct {
	cfg  GraphConfig
	core *graphCore

	// levelMult is mL = 1/ln(MMax), the normalization factor that makes
	// layer populations decay geometrically
	levelMult float64

	// rng drives level assignment only
	rng *rand.Rand

	// visited is reused across insertions; single-writer makes that safe
	visited *visitedSet

	sealed bool
}

// NewGraphBuilder creates a builder over the given accessor using one of the
// built-in distance metrics.
//
// Returns a ConfigError if the configuration is invalid and
// ErrUnknownDistanceKind if the metric is not recognized.
func NewGraphBuilder(accessor VectorAccessor, kind DistanceKind, cfg GraphConfig) (*GraphBuilder, error) {
	distance, err := NewDistance(kind)
	if err != nil {
		return nil, err
	}
	return newGraphBuilder(accessor, kind, distance, cfg)
}

// NewGraphBuilderWithDistance creates a builder with a caller-supplied
// distance strategy. Any metric over two equal-length vectors returning a
// non-negative scalar works; the graph core never inspects the metric.
func NewGraphBuilderWithDistance(accessor VectorAccessor, distance Distance, cfg GraphConfig) (*GraphBuilder, error) {
	return newGraphBuilder(accessor, DistanceKind("custom"), distance, cfg)
}

func newGraphBuilder(accessor VectorAccessor, kind DistanceKind, distance Distance, cfg GraphConfig) (*GraphBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// MMax == 1 would make mL = 1/ln(1) divide by zero; clamp the
	// normalization base so level assignment stays defined
	base := cfg.MMax
	if base < 2 {
		base = 2
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &GraphBuilder{
		cfg: cfg,
		core: &graphCore{
			accessor:     accessor,
			distance:     distance,
			distanceKind: kind,
			nodes:        make([]*graphNode, accessor.Len()),
			maxLevel:     -1, // -1 for empty graph
		},
		levelMult: 1 / math.Log(float64(base)),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		visited:   newVisitedSet(accessor.Len()),
	}, nil
}

// Len returns the number of vectors inserted so far.
func (b *GraphBuilder) Len() int {
	return b.core.size
}

// randomLevel draws a layer count from the exponential distribution
// floor(-ln(U) * mL), truncated at MaxLevel-1. Every node lands at layer 0;
// each successive layer keeps a geometrically decaying fraction, so higher
// layers act as long-range highways.
func (b *GraphBuilder) randomLevel() int {
	u := b.rng.Float64()
	for u == 0 {
		u = b.rng.Float64()
	}

	level := int(math.Floor(-math.Log(u) * b.levelMult))
	if top := int(b.cfg.MaxLevel) - 1; level > top {
		level = top
	}
	return level
}

// Insert adds the vector with the given id to the graph under construction.
//
// THE ALGORITHM:
//  1. Validate (sealed, range, duplicate, dimension) - all before mutation,
//     so a rejected insertion leaves no partial state behind.
//  2. Assign a random level.
//  3. Greedy ef=1 descent from the entry point through layers above the new
//     node's level, narrowing to a good local neighborhood.
//  4. For each layer from min(level, maxLevel) down to 0: searchLayer with
//     ef=efConstruction, select up to mMax neighbors, record the edges.
//  5. Register the node, then add the reverse edges, pruning any neighbor
//     whose degree overflowed. Pruning re-selects over the full candidate
//     set rather than dropping the newest edge, so recent nodes are not
//     biased against.
//  6. If the new level exceeds the graph's top layer, the node becomes the
//     new entry point.
//
// The very first inserted node becomes the initial entry point at its
// assigned level with empty neighbor lists.
func (b *GraphBuilder) Insert(id uint32) error {
	if b.sealed {
		return ErrSealed
	}
	if int(id) >= b.core.accessor.Len() {
		return fmt.Errorf("insert %d: %w", id, ErrOutOfRange)
	}
	if int(id) < len(b.core.nodes) && b.core.nodes[id] != nil {
		return fmt.Errorf("insert %d: %w", id, ErrAlreadyInserted)
	}

	vec, ok := b.core.accessor.Get(id)
	if !ok {
		return fmt.Errorf("insert %d: %w", id, ErrOutOfRange)
	}

	if b.core.size == 0 {
		b.core.dim = len(vec)
	} else if len(vec) != b.core.dim {
		return &DimensionError{Expected: b.core.dim, Actual: len(vec)}
	}

	// Preprocess the stored vector for the metric (cosine normalizes in
	// place; the other metrics are no-ops). An invalid vector is rejected
	// here, before any graph mutation.
	if err := b.core.distance.PreprocessInPlace(vec); err != nil {
		return fmt.Errorf("insert %d: %w", id, err)
	}

	b.ensureNodeTable(id)

	level := b.randomLevel()
	node := newGraphNode(id, level, b.cfg.MMax)

	// First node: becomes the entry point, nothing to search against
	if b.core.size == 0 {
		b.core.nodes[id] = node
		b.core.size = 1
		b.core.entryPoint = id
		b.core.maxLevel = level
		return nil
	}

	curr := b.core.entryPoint

	// ═══════════════════════════════════════════════════════════════════
	// PHASE 1: GREEDY DESCENT THROUGH LAYERS ABOVE THE NEW NODE
	// ═══════════════════════════════════════════════════════════════════
	if b.core.maxLevel > level {
		entryDist, err := b.core.distanceTo(vec, curr)
		if err != nil {
			return err
		}

		curr, _, err = b.core.greedyDescend(vec, curr, entryDist, b.core.maxLevel, level+1)
		if err != nil {
			return err
		}
	}

	// ═══════════════════════════════════════════════════════════════════
	// PHASE 2: MULTI-CANDIDATE SEARCH AND NEIGHBOR SELECTION PER LAYER
	// ═══════════════════════════════════════════════════════════════════
	for lc := min(level, b.core.maxLevel); lc >= 0; lc-- {
		b.visited.Reset()
		candidates, err := b.core.searchLayer(vec, curr, b.cfg.EfConstruction, lc, b.visited)
		if err != nil {
			return err
		}

		selected, err := b.core.selectNeighbors(candidates, b.cfg.MMax, b.cfg.SelectionPolicy)
		if err != nil {
			return err
		}

		for _, c := range selected {
			node.neighbors[lc] = append(node.neighbors[lc], c.id)
		}

		// Closest candidate seeds the next layer down
		if len(candidates) > 0 {
			curr = candidates[0].id
		}
	}

	// ═══════════════════════════════════════════════════════════════════
	// PHASE 3: REGISTER AND LINK BACK, PRUNING OVERFLOWING NEIGHBORS
	// ═══════════════════════════════════════════════════════════════════
	b.core.nodes[id] = node
	b.core.size++

	for lc := min(level, b.core.maxLevel); lc >= 0; lc-- {
		for _, neighborID := range node.neighbors[lc] {
			neighbor := b.core.nodes[neighborID]
			if lc > neighbor.level {
				continue
			}

			neighbor.neighbors[lc] = append(neighbor.neighbors[lc], id)
			if len(neighbor.neighbors[lc]) > b.cfg.MMax {
				if err := b.pruneNeighbors(neighborID, lc); err != nil {
					return err
				}
			}
		}
	}

	if level > b.core.maxLevel {
		b.core.maxLevel = level
		b.core.entryPoint = id
	}

	return nil
}

// pruneNeighbors re-selects a node's neighbor list at one layer back down to
// mMax, applying the configured policy to the full current list (including
// the edge that caused the overflow).
func (b *GraphBuilder) pruneNeighbors(nodeID uint32, layer int) error {
	node := b.core.nodes[nodeID]

	base, ok := b.core.accessor.Get(nodeID)
	if !ok {
		return fmt.Errorf("prune %d: %w", nodeID, ErrOutOfRange)
	}

	candidates := make([]candidate, 0, len(node.neighbors[layer]))
	for _, nid := range node.neighbors[layer] {
		d, err := b.core.distanceTo(base, nid)
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{id: nid, distance: d})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	selected, err := b.core.selectNeighbors(candidates, b.cfg.MMax, b.cfg.SelectionPolicy)
	if err != nil {
		return err
	}

	node.neighbors[layer] = node.neighbors[layer][:0]
	for _, c := range selected {
		node.neighbors[layer] = append(node.neighbors[layer], c.id)
	}

	return nil
}

// ensureNodeTable grows the node table to cover id, for accessors that
// gained rows after the builder was created.
func (b *GraphBuilder) ensureNodeTable(id uint32) {
	if int(id) < len(b.core.nodes) {
		return
	}
	grown := make([]*graphNode, int(id)+1)
	copy(grown, b.core.nodes)
	b.core.nodes = grown
}

// Seal freezes the graph and returns the immutable, concurrently shareable
// GraphIndex. The builder rejects further insertions afterwards; the sealed
// type exposes no mutating methods at all.
func (b *GraphBuilder) Seal() *GraphIndex {
	b.sealed = true
	return &GraphIndex{
		core:            b.core,
		defaultEfSearch: b.cfg.EfConstruction,
	}
}

// BuildGraph constructs and seals a graph over every vector in the accessor,
// inserting ids in order. This is the one-call entry point for the common
// case of a fully materialized dataset.
func BuildGraph(accessor VectorAccessor, kind DistanceKind, cfg GraphConfig) (*GraphIndex, error) {
	builder, err := NewGraphBuilder(accessor, kind, cfg)
	if err != nil {
		return nil, err
	}

	for id := 0; id < accessor.Len(); id++ {
		if err := builder.Insert(uint32(id)); err != nil {
			return nil, err
		}
	}

	return builder.Seal(), nil
}
