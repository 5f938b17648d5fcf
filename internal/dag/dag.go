package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		deps:       make(map[string]int),
		dependents: make(map[string]int),
	}
}

// RemoveNode removes the node and every edge touching it. It reports
// whether the node existed.
func (g *Graph) RemoveNode(id string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for depID := range n.deps {
		delete(g.nodes[depID].dependents, id)
	}
	for depID := range n.dependents {
		delete(g.nodes[depID].deps, id)
	}
	delete(g.nodes, id)
	return true
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again increments its count.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID]++
	fromNode.dependents[toID]++

	return nil
}

// RemoveEdge decrements the count of the edge and deletes it at zero. It
// reports whether the edge existed.
func (g *Graph) RemoveEdge(fromID, toID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok || fromNode.dependents[toID] == 0 {
		return false
	}
	toNode := g.nodes[toID]

	fromNode.dependents[toID]--
	toNode.deps[fromID]--
	if fromNode.dependents[toID] == 0 {
		delete(fromNode.dependents, toID)
		delete(toNode.deps, fromID)
	}
	return true
}

// Dependencies returns the sorted IDs of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted IDs of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedKeys(n.dependents), nil
}

// Reaches reports whether a path of one or more edges leads from fromID to
// toID.
func (g *Graph) Reaches(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	start, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	seen := map[string]bool{}
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for id := range n.dependents {
			if id == toID {
				return true
			}
			if !seen[id] {
				seen[id] = true
				stack = append(stack, g.nodes[id])
			}
		}
	}
	return false
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
