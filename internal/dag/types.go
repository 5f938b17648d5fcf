package dag

import "sync"

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
}

// node represents a single vertex in the graph. Edges are counted because
// one consumer may bind several slots to the same producer.
type node struct {
	// id is the unique identifier for the node.
	id string
	// deps counts the edges from each node this node depends on.
	deps map[string]int
	// dependents counts the edges to each node that depends on this node.
	dependents map[string]int
}
