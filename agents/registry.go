// Package agents wires workflow strategies together: the registry that
// constructs them by name and the router that picks one for an instruction.
package agents

import (
	"fmt"
	"sync"

	"github.com/lexcodex/reactcoder/framework"
)

// Factory constructs a fresh workflow instance.
type Factory func() framework.Workflow

// WorkflowOption is the router-facing metadata of a registered workflow.
type WorkflowOption struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description" yaml:"description"`
	Complexity  framework.ComplexityTier `json:"complexity_level" yaml:"complexity_level"`
}

// Registry maps workflow names to factories. Registration order is kept so
// the router prompt and listings are stable.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	options   []WorkflowOption
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. The factory is called once to read and validate
// the workflow's metadata; missing metadata or a duplicate name is an error.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return fmt.Errorf("nil workflow factory")
	}
	probe := factory()
	if probe == nil {
		return fmt.Errorf("workflow factory returned nil")
	}
	desc := framework.DescriptorOf(probe)
	if err := desc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[desc.Name()]; exists {
		return fmt.Errorf("workflow %s already registered", desc.Name())
	}
	r.factories[desc.Name()] = factory
	r.options = append(r.options, WorkflowOption{
		Name:        desc.Name(),
		Description: desc.Description(),
		Complexity:  desc.Complexity(),
	})
	return nil
}

// MustRegister is Register for composition code where failure is a
// programming error.
func (r *Registry) MustRegister(factory Factory) {
	if err := r.Register(factory); err != nil {
		panic(err)
	}
}

// Get constructs a new instance of the named workflow. Unknown names wrap
// framework.ErrWorkflowNotFound.
func (r *Registry) Get(name string) (framework.Workflow, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", framework.ErrWorkflowNotFound, name)
	}
	return factory(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Options returns the metadata table of every registered workflow.
func (r *Registry) Options() []WorkflowOption {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]WorkflowOption(nil), r.options...)
}

// Names returns registered workflow names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.options))
	for i, opt := range r.options {
		names[i] = opt.Name
	}
	return names
}
