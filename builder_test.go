package lance

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

// randomRows generates n vectors of the given width with reproducible
// pseudo-random coordinates in [0, 1).
func randomRows(n, dim int, seed uint64) [][]float32 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	rows := make([][]float32, n)
	for i := range rows {
		row := make([]float32, dim)
		for j := range row {
			row[j] = rng.Float32()
		}
		rows[i] = row
	}
	return rows
}

// testConfig returns small, fast construction parameters with a fixed seed.
func testConfig() GraphConfig {
	cfg := DefaultGraphConfig()
	cfg.MMax = 8
	cfg.EfConstruction = 64
	cfg.Seed = 42
	return cfg
}

// raggedAccessor serves rows of varying width, which a MatrixAccessor cannot
// represent. Used to exercise the builder's per-insert dimension check.
type raggedAccessor struct {
	rows [][]float32
}

func (r *raggedAccessor) Get(id uint32) ([]float32, bool) {
	if int(id) >= len(r.rows) {
		return nil, false
	}
	return r.rows[id], true
}

func (r *raggedAccessor) Len() int { return len(r.rows) }

// TestGraphConfigValidate tests rejection of unusable construction parameters
func TestGraphConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*GraphConfig)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *GraphConfig) {},
		},
		{
			name:      "zero max level",
			mutate:    func(c *GraphConfig) { c.MaxLevel = 0 },
			wantField: "maxLevel",
		},
		{
			name:      "zero mMax",
			mutate:    func(c *GraphConfig) { c.MMax = 0 },
			wantField: "mMax",
		},
		{
			name:      "negative efConstruction",
			mutate:    func(c *GraphConfig) { c.EfConstruction = -1 },
			wantField: "efConstruction",
		},
		{
			name:      "unknown selection policy",
			mutate:    func(c *GraphConfig) { c.SelectionPolicy = SelectionPolicy(99) },
			wantField: "selectionPolicy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGraphConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

// TestNewGraphBuilderInvalidConfig tests that a bad config fails before any
// insertion can happen
func TestNewGraphBuilderInvalidConfig(t *testing.T) {
	accessor, err := NewMatrixAccessorFromRows(randomRows(4, 3, 1))
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultGraphConfig()
	cfg.MMax = 0

	if _, err := NewGraphBuilder(accessor, Euclidean, cfg); err == nil {
		t.Fatal("NewGraphBuilder accepted MMax = 0")
	}
}

// TestFirstInsert tests that the first node becomes the entry point
func TestFirstInsert(t *testing.T) {
	accessor, err := NewMatrixAccessorFromRows(randomRows(4, 3, 1))
	if err != nil {
		t.Fatal(err)
	}

	builder, err := NewGraphBuilder(accessor, Euclidean, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := builder.Insert(2); err != nil {
		t.Fatal(err)
	}

	if builder.Len() != 1 {
		t.Errorf("Len() = %d, want 1", builder.Len())
	}
	if builder.core.entryPoint != 2 {
		t.Errorf("entry point = %d, want 2", builder.core.entryPoint)
	}
	if builder.core.maxLevel != builder.core.nodes[2].level {
		t.Errorf("maxLevel = %d, want the first node's level %d",
			builder.core.maxLevel, builder.core.nodes[2].level)
	}
}

// TestInsertErrors tests the rejection paths of Insert
func TestInsertErrors(t *testing.T) {
	accessor, err := NewMatrixAccessorFromRows(randomRows(4, 3, 1))
	if err != nil {
		t.Fatal(err)
	}

	builder, err := NewGraphBuilder(accessor, Euclidean, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := builder.Insert(0); err != nil {
		t.Fatal(err)
	}

	t.Run("out of range", func(t *testing.T) {
		if err := builder.Insert(100); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Insert(100) = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		if err := builder.Insert(0); !errors.Is(err, ErrAlreadyInserted) {
			t.Errorf("Insert(0) twice = %v, want ErrAlreadyInserted", err)
		}
	})

	t.Run("sealed", func(t *testing.T) {
		builder.Seal()
		if err := builder.Insert(1); !errors.Is(err, ErrSealed) {
			t.Errorf("Insert after Seal = %v, want ErrSealed", err)
		}
	})
}

// TestInsertDimensionMismatch tests that a vector narrower than the first one
// is rejected with the observed widths
func TestInsertDimensionMismatch(t *testing.T) {
	accessor := &raggedAccessor{rows: [][]float32{
		{1, 2, 3},
		{4, 5},
	}}

	builder, err := NewGraphBuilder(accessor, Euclidean, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := builder.Insert(0); err != nil {
		t.Fatal(err)
	}

	err = builder.Insert(1)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("Insert = %v, want *DimensionError", err)
	}
	if dimErr.Expected != 3 || dimErr.Actual != 2 {
		t.Errorf("DimensionError = {%d %d}, want {3 2}", dimErr.Expected, dimErr.Actual)
	}
}

// TestGraphInvariants tests structural properties that must hold for every
// node after a full build: bounded degree, no self-loops, valid neighbor
// ids, and a consistent entry point
func TestGraphInvariants(t *testing.T) {
	cfg := testConfig()
	accessor, err := NewMatrixAccessorFromRows(randomRows(300, 6, 7))
	if err != nil {
		t.Fatal(err)
	}

	index, err := BuildGraph(accessor, Euclidean, cfg)
	if err != nil {
		t.Fatal(err)
	}

	core := index.core
	for id, node := range core.nodes {
		if node == nil {
			t.Fatalf("node %d missing after full build", id)
		}
		if node.level > core.maxLevel {
			t.Errorf("node %d at level %d above graph maxLevel %d",
				id, node.level, core.maxLevel)
		}

		for lc, neighbors := range node.neighbors {
			if len(neighbors) > cfg.MMax {
				t.Errorf("node %d layer %d degree %d exceeds mMax %d",
					id, lc, len(neighbors), cfg.MMax)
			}
			for _, nid := range neighbors {
				if nid == uint32(id) {
					t.Errorf("node %d layer %d has a self-loop", id, lc)
				}
				if int(nid) >= len(core.nodes) || core.nodes[nid] == nil {
					t.Errorf("node %d layer %d references missing node %d", id, lc, nid)
				} else if core.nodes[nid].level < lc {
					t.Errorf("node %d layer %d references node %d which stops at level %d",
						id, lc, nid, core.nodes[nid].level)
				}
			}
		}
	}

	entry := core.nodes[core.entryPoint]
	if entry.level != core.maxLevel {
		t.Errorf("entry point level = %d, want maxLevel %d", entry.level, core.maxLevel)
	}
}

// TestEntryPointMonotonic tests that the top layer never decreases during a
// build and that the entry point only changes when the top layer grows
func TestEntryPointMonotonic(t *testing.T) {
	accessor, err := NewMatrixAccessorFromRows(randomRows(200, 4, 11))
	if err != nil {
		t.Fatal(err)
	}

	builder, err := NewGraphBuilder(accessor, Euclidean, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	prevLevel := -1
	var prevEntry uint32
	for id := 0; id < accessor.Len(); id++ {
		if err := builder.Insert(uint32(id)); err != nil {
			t.Fatal(err)
		}

		level := builder.core.maxLevel
		entry := builder.core.entryPoint

		if level < prevLevel {
			t.Fatalf("after insert %d: maxLevel dropped from %d to %d", id, prevLevel, level)
		}
		if id > 0 && entry != prevEntry && level == prevLevel {
			t.Fatalf("after insert %d: entry point moved %d -> %d without the top layer growing",
				id, prevEntry, entry)
		}

		prevLevel = level
		prevEntry = entry
	}
}

// TestBuildDeterminism tests that two builds with the same seed and insertion
// order produce identical adjacency
func TestBuildDeterminism(t *testing.T) {
	rows := randomRows(150, 5, 13)
	cfg := testConfig()

	build := func() *GraphIndex {
		accessor, err := NewMatrixAccessorFromRows(rows)
		if err != nil {
			t.Fatal(err)
		}
		index, err := BuildGraph(accessor, Euclidean, cfg)
		if err != nil {
			t.Fatal(err)
		}
		return index
	}

	a, b := build(), build()

	if a.EntryPoint() != b.EntryPoint() || a.MaxLevel() != b.MaxLevel() {
		t.Fatalf("builds diverge: entry %d/%d, maxLevel %d/%d",
			a.EntryPoint(), b.EntryPoint(), a.MaxLevel(), b.MaxLevel())
	}

	for id := range a.core.nodes {
		na, nb := a.core.nodes[id], b.core.nodes[id]
		if na.level != nb.level {
			t.Fatalf("node %d level %d vs %d", id, na.level, nb.level)
		}
		if !reflect.DeepEqual(na.neighbors, nb.neighbors) {
			t.Fatalf("node %d adjacency diverges between same-seed builds", id)
		}
	}
}

// TestBuildConnectivity tests that every node stays reachable from the entry
// point over layer-0 edges
func TestBuildConnectivity(t *testing.T) {
	accessor, err := NewMatrixAccessorFromRows(randomRows(400, 8, 17))
	if err != nil {
		t.Fatal(err)
	}

	index, err := BuildGraph(accessor, Euclidean, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	stats := index.Stats()
	if stats.Reachable != stats.Nodes {
		t.Errorf("Reachable = %d, want all %d nodes", stats.Reachable, stats.Nodes)
	}
}
