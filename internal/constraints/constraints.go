// Package constraints implements the predicates attachable to user-defined
// value types and the logic that applies them to a value in declared order.
package constraints

import (
	"fmt"
	"log/slog"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Executor validates a single value against one configured constraint. It
// reads its own properties through ec and must not have side effects.
type Executor interface {
	Type() string
	IsValid(v cty.Value, ec *execution.Context) bool
}

// Registry maps constraint type names to executors.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds e under its type name.
func (r *Registry) Register(e Executor) {
	if _, exists := r.executors[e.Type()]; exists {
		panic(fmt.Sprintf("constraint executor '%s' already registered", e.Type()))
	}
	slog.Debug("Registering constraint executor.", "type", e.Type())
	r.executors[e.Type()] = e
}

// Get looks up the executor for a constraint type.
func (r *Registry) Get(typeName string) (Executor, bool) {
	e, ok := r.executors[typeName]
	return e, ok
}

// MustGet is like Get but panics on a miss.
func (r *Registry) MustGet(typeName string) Executor {
	e, ok := r.executors[typeName]
	if !ok {
		panic(fmt.Sprintf("no constraint executor registered for '%s'", typeName))
	}
	return e
}

// Checker evaluates the constraints of a value type.
type Checker struct {
	catalogue *meta.Catalogue
	registry  *Registry
}

// NewChecker binds a checker to the descriptors and executors it dispatches to.
func NewChecker(cat *meta.Catalogue, reg *Registry) *Checker {
	return &Checker{catalogue: cat, registry: reg}
}

// Check applies the constraints of vt to v in declared order. The first
// failing constraint is reported; later ones are not evaluated.
func (c *Checker) Check(ec *execution.Context, vt *valuetype.ValueType, v cty.Value) error {
	for _, constraint := range vt.Constraints {
		desc := c.catalogue.MustConstraintType(constraint.Type)
		exec := c.registry.MustGet(constraint.Type)
		if !exec.IsValid(v, ec.ForConstraint(constraint, desc.Properties)) {
			return ec.Errorf("value %s does not satisfy constraint %q (%s)", Describe(v), constraint.Name, constraint.Type)
		}
	}
	return nil
}

// Describe renders a value for use in diagnostics.
func Describe(v cty.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case !v.IsKnown():
		return "(unknown)"
	case v.Type() == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case v.Type() == cty.Bool:
		return fmt.Sprintf("%t", v.True())
	}
	return v.GoString()
}
