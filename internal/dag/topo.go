package dag

import "fmt"

// TopologicalOrder returns every node ordered so that each one appears after
// all of its dependencies. Among nodes that are ready at the same time, the
// one added first comes first, so a linear chain comes back in insertion order.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[string]int, len(g.nodes))
	var ready []*node
	for _, n := range sorted(g.nodes) {
		remaining[n.id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		// Pick the earliest-inserted ready node.
		best := 0
		for i, n := range ready {
			if n.seq < ready[best].seq {
				best = i
			}
		}
		n := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, n.id)

		for _, d := range sorted(n.dependents) {
			remaining[d.id]--
			if remaining[d.id] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("graph has a cycle: ordered %d of %d nodes", len(order), len(g.nodes))
	}
	return order, nil
}

// Descendants returns every node reachable from id, in insertion order.
func (g *Graph) Descendants(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	seen := make(map[string]*node)
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, d := range n.dependents {
			if _, ok := seen[d.id]; !ok {
				seen[d.id] = d
				queue = append(queue, d)
			}
		}
	}
	return ids(seen), nil
}
