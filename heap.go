package lance

import (
	"container/heap"
	"sync"
)

// ============================================================================
// CANDIDATE ORDERING
// ============================================================================

// candidate pairs a node id with its distance to the current query. It is
// the ordering unit that drives priority-ordered traversal: the candidate
// queue wants the nearest first, the result queue wants the farthest first.
//
// Distances are assumed non-negative and never NaN for valid inputs; both
// heap orderings below are total under that precondition.
type candidate struct {
	id       uint32  // Node ID
	distance float32 // Distance from query
}

// minHeap is a min-heap of candidates (closest on top).
//
// Used for the candidate queue during search - we always want to explore
// the nearest unvisited node next.
type minHeap []candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].distance < h[j].distance }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x interface{}) {
	*h = append(*h, x.(candidate))
}

func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// maxHeap is a max-heap of candidates (farthest on top).
//
// Used for the bounded result set during search - we keep the ef best
// candidates and can quickly evict the worst one when a better one appears.
//
// Two separate heap types over the same comparator avoid the bug class
// where "pop worst" and "pop best" get confused on one ambiguous queue.
type maxHeap []candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i].distance > h[j].distance }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(x interface{}) {
	*h = append(*h, x.(candidate))
}

func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// ============================================================================
// HEAP POOLS FOR ALLOCATION OPTIMIZATION
// ============================================================================

// minHeapPool is a sync.Pool for min-heaps to reduce allocations during search.
//
// searchLayer runs once per layer per insertion and once per query, so the
// two scratch heaps are the hottest allocations in the package. Pooling them
// keeps GC pressure flat under concurrent query load.
var minHeapPool = sync.Pool{
	New: func() interface{} {
		h := &minHeap{}
		heap.Init(h)
		return h
	},
}

// maxHeapPool is a sync.Pool for max-heaps to reduce allocations during search.
var maxHeapPool = sync.Pool{
	New: func() interface{} {
		h := &maxHeap{}
		heap.Init(h)
		return h
	},
}

// newMinHeap gets a min-heap from the pool.
//
// IMPORTANT: Caller must call putMinHeap() when done to return to pool.
func newMinHeap() *minHeap {
	return minHeapPool.Get().(*minHeap)
}

// putMinHeap returns a min-heap to the pool after resetting it.
func putMinHeap(h *minHeap) {
	// Truncate to zero length, retaining capacity for reuse
	*h = (*h)[:0]
	minHeapPool.Put(h)
}

// newMaxHeap gets a max-heap from the pool.
//
// IMPORTANT: Caller must call putMaxHeap() when done to return to pool.
func newMaxHeap() *maxHeap {
	return maxHeapPool.Get().(*maxHeap)
}

// putMaxHeap returns a max-heap to the pool after resetting it.
func putMaxHeap(h *maxHeap) {
	// Truncate to zero length, retaining capacity for reuse
	*h = (*h)[:0]
	maxHeapPool.Put(h)
}
