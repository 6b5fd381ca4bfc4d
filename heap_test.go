package lance

import (
	"container/heap"
	"math/rand/v2"
	"testing"
)

// TestMinHeapOrdering tests that the candidate queue pops nearest first
func TestMinHeapOrdering(t *testing.T) {
	h := newMinHeap()
	defer putMinHeap(h)

	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 100; i++ {
		heap.Push(h, candidate{id: uint32(i), distance: rng.Float32()})
	}

	prev := float32(-1)
	for h.Len() > 0 {
		c := heap.Pop(h).(candidate)
		if c.distance < prev {
			t.Fatalf("min-heap popped %v after %v", c.distance, prev)
		}
		prev = c.distance
	}
}

// TestMaxHeapOrdering tests that the result queue keeps the farthest on top
func TestMaxHeapOrdering(t *testing.T) {
	h := newMaxHeap()
	defer putMaxHeap(h)

	rng := rand.New(rand.NewPCG(11, 11))
	for i := 0; i < 100; i++ {
		heap.Push(h, candidate{id: uint32(i), distance: rng.Float32()})
	}

	prev := float32(2)
	for h.Len() > 0 {
		c := heap.Pop(h).(candidate)
		if c.distance > prev {
			t.Fatalf("max-heap popped %v after %v", c.distance, prev)
		}
		prev = c.distance
	}
}

// TestBoundedResultEviction tests the evict-farthest pattern used by searchLayer
func TestBoundedResultEviction(t *testing.T) {
	const ef = 5

	h := newMaxHeap()
	defer putMaxHeap(h)

	for i := 0; i < 50; i++ {
		heap.Push(h, candidate{id: uint32(i), distance: float32(50 - i)})
		if h.Len() > ef {
			heap.Pop(h)
		}
	}

	if h.Len() != ef {
		t.Fatalf("bounded heap length = %d, want %d", h.Len(), ef)
	}

	// Survivors are the ef smallest distances: 1..5
	for h.Len() > 0 {
		c := heap.Pop(h).(candidate)
		if c.distance > ef {
			t.Errorf("survivor distance %v exceeds %d", c.distance, ef)
		}
	}
}

// TestHeapPoolReuse tests that pooled heaps come back empty
func TestHeapPoolReuse(t *testing.T) {
	h := newMinHeap()
	heap.Push(h, candidate{id: 1, distance: 1})
	heap.Push(h, candidate{id: 2, distance: 2})
	putMinHeap(h)

	reused := newMinHeap()
	defer putMinHeap(reused)
	if reused.Len() != 0 {
		t.Errorf("pooled min-heap length = %d, want 0", reused.Len())
	}

	m := newMaxHeap()
	heap.Push(m, candidate{id: 1, distance: 1})
	putMaxHeap(m)

	reusedMax := newMaxHeap()
	defer putMaxHeap(reusedMax)
	if reusedMax.Len() != 0 {
		t.Errorf("pooled max-heap length = %d, want 0", reusedMax.Len())
	}
}
