package weft

import "testing"

func TestDependencyGraph_InitOrder(t *testing.T) {
	g := newDependencyGraph()
	g.addEdge("server", "db")
	g.addEdge("server", "config")
	g.addEdge("db", "config")

	order, err := g.initOrder([]string{"server", "db", "config"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["config"] > pos["db"] || pos["db"] > pos["server"] {
		t.Errorf("expected config before db before server, got %v", order)
	}
}

func TestDependencyGraph_CycleDetected(t *testing.T) {
	g := newDependencyGraph()
	g.addEdge("a", "b")
	g.addEdge("b", "c")
	g.addEdge("c", "a")

	if _, err := g.initOrder([]string{"a", "b", "c"}); err == nil {
		t.Fatal("expected a cycle error, got nil")
	}
}

func TestDependencyGraph_DisposeOrderReversesInit(t *testing.T) {
	g := newDependencyGraph()
	g.addEdge("server", "db")
	g.addEdge("db", "config")

	initOrder, err := g.initOrder([]string{"server", "db", "config"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	disposeOrder, err := g.disposeOrder([]string{"server", "db", "config"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i, id := range initOrder {
		if disposeOrder[len(disposeOrder)-1-i] != id {
			t.Fatalf("dispose order %v is not the reverse of init order %v", disposeOrder, initOrder)
		}
	}
}

func TestDependencyGraph_NoDuplicateEdges(t *testing.T) {
	g := newDependencyGraph()
	g.addEdge("a", "b")
	g.addEdge("a", "b")
	if len(g.downstream["a"]) != 1 {
		t.Errorf("expected addEdge to dedupe, got %v", g.downstream["a"])
	}
}
