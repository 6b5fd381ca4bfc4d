package lance

import "testing"

// TestNewGraphNode tests layer list allocation for a node's assigned level
func TestNewGraphNode(t *testing.T) {
	node := newGraphNode(7, 3, 16)

	if node.id != 7 {
		t.Errorf("id = %d, want 7", node.id)
	}
	if node.level != 3 {
		t.Errorf("level = %d, want 3", node.level)
	}
	if len(node.neighbors) != 4 {
		t.Fatalf("got %d layer lists, want 4 (layers 0..3)", len(node.neighbors))
	}
	for lc, list := range node.neighbors {
		if len(list) != 0 {
			t.Errorf("layer %d starts with %d neighbors, want 0", lc, len(list))
		}
		if node.degree(lc) != 0 {
			t.Errorf("degree(%d) = %d, want 0", lc, node.degree(lc))
		}
	}
}
