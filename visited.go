package lance

import "github.com/bits-and-blooms/bitset"

// visitedSet tracks which node ids a single search invocation has expanded.
//
// Ids are dense in [0, n), so a plain bitset beats a hash set or a
// compressed bitmap on the hot path: Visit and Visited are one word
// operation each, and the whole set for a million nodes is 128 KB.
//
// A visitedSet belongs to exactly one search invocation at a time. Queries
// allocate their own; the builder reuses one across insertions and resets
// it between layer searches (construction is single-writer anyway).
type visitedSet struct {
	bits *bitset.BitSet
}

// newVisitedSet creates a visited set sized for capacity node ids.
// The underlying bitset grows automatically if an id exceeds the capacity.
func newVisitedSet(capacity int) *visitedSet {
	if capacity < 1 {
		capacity = 1
	}
	return &visitedSet{bits: bitset.New(uint(capacity))}
}

// Visit marks a node as visited.
func (v *visitedSet) Visit(id uint32) {
	v.bits.Set(uint(id))
}

// Visited returns true if the node has been visited.
func (v *visitedSet) Visited(id uint32) bool {
	return v.bits.Test(uint(id))
}

// Reset clears the set for the next search.
func (v *visitedSet) Reset() {
	v.bits.ClearAll()
}
