package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/tabflow/internal/constraints"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
)

// Module is the interface that all block modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Executor performs the transformation of one block type.
type Executor interface {
	InputKind() iotype.Kind
	OutputKind() iotype.Kind
	Execute(ec *execution.Context, input iotype.Value) (iotype.Value, error)
}

// Factory produces a fresh executor. It is called once per block per run.
type Factory func() Executor

// Registry holds the catalogue, block factories and constraint executors for
// a single application instance. It is written during startup only and read
// concurrently by runs afterwards.
type Registry struct {
	catalogue   *meta.Catalogue
	factories   map[string]Factory
	constraints *constraints.Registry
	checker     *constraints.Checker
}

// New creates a Registry with the builtin constraint types installed.
func New() *Registry {
	cat := meta.NewCatalogue()
	cons := constraints.NewRegistry()
	constraints.Install(cat, cons)
	return &Registry{
		catalogue:   cat,
		factories:   make(map[string]Factory),
		constraints: cons,
		checker:     constraints.NewChecker(cat, cons),
	}
}

// RegisterBlock registers a block descriptor together with its factory.
func (r *Registry) RegisterBlock(desc *meta.BlockType, factory Factory) {
	if _, exists := r.factories[desc.Name]; exists {
		panic(fmt.Sprintf("block executor '%s' already registered", desc.Name))
	}
	slog.Debug("Registering block executor.", "name", desc.Name)
	r.catalogue.RegisterBlockType(desc)
	r.factories[desc.Name] = factory
}

// RegisterConstraint registers an additional constraint type.
func (r *Registry) RegisterConstraint(desc *meta.ConstraintType, exec constraints.Executor) {
	r.catalogue.RegisterConstraintType(desc)
	r.constraints.Register(exec)
}

// Catalogue exposes the type descriptors.
func (r *Registry) Catalogue() *meta.Catalogue { return r.catalogue }

// Constraints returns the checker applying constraints of value types.
func (r *Registry) Constraints() *constraints.Checker { return r.checker }
