package weft

import "testing"

func TestExecutionTree_AddAndWalkPreservesInsertionOrder(t *testing.T) {
	tree := newExecutionTree(10)
	tree.Add(&ExecutionNode{ID: "a", Label: "first"})
	tree.Add(&ExecutionNode{ID: "b", ParentID: "a", Label: "second"})
	tree.Add(&ExecutionNode{ID: "c", Label: "third"})

	var seen []string
	tree.Walk(func(n *ExecutionNode) { seen = append(seen, n.ID) })
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if seen[i] != id {
			t.Fatalf("expected walk order %v, got %v", want, seen)
		}
	}

	roots := tree.GetRoots()
	if len(roots) != 2 || roots[0] != "a" || roots[1] != "c" {
		t.Errorf("expected roots [a c], got %v", roots)
	}
}

func TestExecutionTree_EvictsOldestOverLimit(t *testing.T) {
	tree := newExecutionTree(2)
	tree.Add(&ExecutionNode{ID: "a"})
	tree.Add(&ExecutionNode{ID: "b"})
	tree.Add(&ExecutionNode{ID: "c"})

	if _, ok := tree.GetNode("a"); ok {
		t.Error("expected the oldest node to be evicted once over the limit")
	}
	if _, ok := tree.GetNode("c"); !ok {
		t.Error("expected the newest node to remain")
	}
}

func TestExecutionTree_FilterMatchesPredicate(t *testing.T) {
	tree := newExecutionTree(10)
	tree.Add(&ExecutionNode{ID: "ok", Label: "run"})
	tree.Add(&ExecutionNode{ID: "failed", Label: "run", Err: errCycleDetected("x")})

	failed := tree.Filter(func(n *ExecutionNode) bool { return n.Err != nil })
	if len(failed) != 1 || failed[0].ID != "failed" {
		t.Errorf("expected exactly the failed node, got %v", failed)
	}
}
