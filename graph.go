package weft

// dependencyGraph tracks the resource dependency DAG: downstream[a]
// holds everything a depends on, upstream[a] holds everything that
// depends on a. Traversal is iterative and stack-based throughout,
// mirroring the teacher's ReactiveGraph.FindDependents, to avoid recursion
// depth issues on deep dependency chains.
type dependencyGraph struct {
	downstream map[string][]string
	upstream   map[string][]string
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		downstream: make(map[string][]string),
		upstream:   make(map[string][]string),
	}
}

func (g *dependencyGraph) addEdge(from, to string) {
	if !containsStr(g.downstream[from], to) {
		g.downstream[from] = append(g.downstream[from], to)
	}
	if !containsStr(g.upstream[to], from) {
		g.upstream[to] = append(g.upstream[to], from)
	}
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// initOrder returns resource ids in an order where every resource appears
// after everything it depends on, or a WiringError if the graph contains a
// cycle. Implemented as iterative depth-first postorder traversal (stack +
// explicit visiting/visited sets), not recursion.
func (g *dependencyGraph) initOrder(ids []string) ([]string, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(ids))
	var order []string

	type frame struct {
		id        string
		childIdx  int
	}

	for _, start := range ids {
		if state[start] == done {
			continue
		}
		stack := []*frame{{id: start}}
		path := []string{start}
		state[start] = visiting

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			children := g.downstream[top.id]
			if top.childIdx < len(children) {
				child := children[top.childIdx]
				top.childIdx++
				switch state[child] {
				case unvisited:
					state[child] = visiting
					stack = append(stack, &frame{id: child})
					path = append(path, child)
				case visiting:
					return nil, errResourceCycle(append(append([]string{}, path...), child))
				case done:
					// already ordered
				}
				continue
			}
			// all children processed
			order = append(order, top.id)
			state[top.id] = done
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}
	return order, nil
}

// disposeOrder is initOrder reversed: dependents are disposed before what
// they depend on.
func (g *dependencyGraph) disposeOrder(ids []string) ([]string, error) {
	order, err := g.initOrder(ids)
	if err != nil {
		return nil, err
	}
	reversed := make([]string, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}
