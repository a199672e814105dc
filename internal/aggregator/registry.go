package aggregator

import (
	"sync"

	"toolmux/internal/translate"
)

// Registry holds the current aggregation snapshot. Swap replaces it
// atomically once a cycle completes; the read path never blocks on an
// in-progress cycle and always sees the most recently completed snapshot.
type Registry struct {
	mu      sync.RWMutex
	current *ToolSet

	// Buffered size-1 channel: subscribers learn that a new snapshot was
	// swapped in without blocking the swapper.
	updateChan chan struct{}
}

// NewRegistry creates a registry holding an empty snapshot.
func NewRegistry() *Registry {
	return &Registry{
		current:    newToolSet("", nil, nil),
		updateChan: make(chan struct{}, 1),
	}
}

// Current returns the latest completed snapshot. The snapshot is immutable;
// holding it across a Swap is safe.
func (r *Registry) Current() *ToolSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Swap installs a new snapshot and notifies subscribers.
func (r *Registry) Swap(set *ToolSet) {
	r.mu.Lock()
	r.current = set
	r.mu.Unlock()

	select {
	case r.updateChan <- struct{}{}:
	default:
		// A notification is already pending.
	}
}

// Tools returns the current snapshot's descriptors in ascending name order.
func (r *Registry) Tools() []translate.ToolDescriptor {
	return r.Current().Tools()
}

// UpdateChannel returns a channel that receives a notification after each
// snapshot swap.
func (r *Registry) UpdateChannel() <-chan struct{} {
	return r.updateChan
}
