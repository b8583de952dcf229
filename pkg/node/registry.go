package node

import (
	"fmt"
	"sync"
)

// Registry manages node registration and discovery
type Registry struct {
	nodes map[string]Node
	mu    sync.RWMutex
}

// NewRegistry creates a new node registry
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]Node),
	}
}

// Register adds a node to the registry
func (r *Registry) Register(node Node) error {
	if node == nil {
		return fmt.Errorf("cannot register nil node")
	}

	name := node.Name()
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("node %s is already registered", name)
	}

	r.nodes[name] = node
	return nil
}

// Get retrieves a node by name
func (r *Registry) Get(name string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[name]
	return node, exists
}

// List returns all registered node names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	return names
}
