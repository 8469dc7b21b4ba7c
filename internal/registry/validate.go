package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/meta"
)

// Validate performs a strict parity check between the catalogue and the Go
// code: every block descriptor has a factory whose executor agrees on its
// data kinds, every constraint descriptor has an executor, and every default
// value fits the property's declared type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.catalogue.BlockTypeNames() {
		desc, _ := r.catalogue.BlockType(name)
		factory, ok := r.factories[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("block '%s': descriptor has no executor", name))
			continue
		}
		exec := factory()
		if exec.InputKind() != desc.Input || exec.OutputKind() != desc.Output {
			errs = append(errs, fmt.Sprintf("block '%s': descriptor is %s -> %s but executor is %s -> %s",
				name, desc.Input, desc.Output, exec.InputKind(), exec.OutputKind()))
		}
		errs = append(errs, checkDefaults("block '"+name+"'", desc.Properties)...)
	}

	for _, name := range r.catalogue.ConstraintTypeNames() {
		desc, _ := r.catalogue.ConstraintType(name)
		if _, ok := r.constraints.Get(name); !ok {
			errs = append(errs, fmt.Sprintf("constraint '%s': descriptor has no executor", name))
		}
		if len(desc.Compatible) == 0 {
			logger.Warn("Constraint type is not compatible with any primitive and can never be used.", "constraint", name)
		}
		errs = append(errs, checkDefaults("constraint '"+name+"'", desc.Properties)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "blocks", len(r.factories))
	return nil
}

func checkDefaults(owner string, props meta.Properties) []string {
	var errs []string
	for name, spec := range props {
		if spec.Default == nil {
			continue
		}
		if _, err := meta.CheckProperty(spec, *spec.Default); err != nil {
			errs = append(errs, fmt.Sprintf("%s, property '%s': default does not fit: %v", owner, name, err))
		}
	}
	return errs
}
