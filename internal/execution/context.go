// Package execution provides the per-block façade executors use to read
// their configuration, report diagnostics and log.
//
// Property getters trust that the pipeline was validated against the block's
// descriptor before it reached the runner. A getter that finds a property
// missing or mistyped panics: that state means the loader and the catalogue
// disagree, which is a defect, not a user error.
package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Node is a configured element whose properties a Context reads. Both
// pipeline blocks and constraint definitions satisfy it.
type Node interface {
	NodeName() string
	TypeName() string
	Property(name string) (cty.Value, bool)
	SourceRange() hcl.Range
}

// Context is created once per block instance per run.
type Context struct {
	ctx    context.Context
	node   Node
	props  meta.Properties
	params map[string]cty.Value
	sink   *diag.Sink
	logger *slog.Logger
}

// New builds a context for node. props is the descriptor's property table,
// params the run's runtime parameters and sink the run's diagnostics sink.
func New(ctx context.Context, node Node, props meta.Properties, params map[string]cty.Value, sink *diag.Sink) *Context {
	if sink == nil {
		sink = &diag.Sink{}
	}
	logger := ctxlog.FromContext(ctx).With("block", node.NodeName(), "type", node.TypeName())
	return &Context{
		ctx:    ctxlog.WithLogger(ctx, logger),
		node:   node,
		props:  props,
		params: params,
		sink:   sink,
		logger: logger,
	}
}

// ForConstraint derives a context that reads the properties of constraint c
// through the same getters.
func (c *Context) ForConstraint(constraint Node, props meta.Properties) *Context {
	logger := c.logger.With("constraint", constraint.NodeName())
	return &Context{
		ctx:    ctxlog.WithLogger(c.ctx, logger),
		node:   constraint,
		props:  props,
		params: c.params,
		sink:   c.sink,
		logger: logger,
	}
}

// Ctx returns the context.Context for blocking calls made by the executor.
func (c *Context) Ctx() context.Context { return c.ctx }

// Logger returns a logger scoped to the node.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Node returns the element this context reads from.
func (c *Context) Node() Node { return c.node }

// DiagNode identifies the node in diagnostics.
func (c *Context) DiagNode() diag.Node {
	return diag.Node{Name: c.node.NodeName(), Range: c.node.SourceRange()}
}

// Errorf builds an error diagnostic attributed to the node.
func (c *Context) Errorf(format string, args ...any) *diag.Diagnostic {
	return diag.Errorf(c.DiagNode(), format, args...)
}

// PropertyErrorf builds an error diagnostic attributed to one property.
func (c *Context) PropertyErrorf(property, format string, args ...any) *diag.Diagnostic {
	return diag.Errorf(c.DiagNode(), format, args...).OnProperty(property)
}

// Report hands d to the run's sink.
func (c *Context) Report(d *diag.Diagnostic) {
	c.sink.Report(d)
}

// Warnf reports a warning attributed to the node.
func (c *Context) Warnf(format string, args ...any) {
	d := diag.Warnf(c.DiagNode(), format, args...)
	c.logger.Warn(d.Message)
	c.sink.Report(d)
}

// Value returns the resolved value of a declared property: the assigned
// value, or the descriptor default, with runtime parameters substituted and
// converted to the declared type.
func (c *Context) Value(name string) cty.Value {
	spec, ok := c.props[name]
	if !ok {
		panic(fmt.Sprintf("%s '%s' has no property %q in its descriptor", c.node.TypeName(), c.node.NodeName(), name))
	}

	v, assigned := c.node.Property(name)
	if !assigned {
		if spec.Default == nil {
			panic(fmt.Sprintf("required property %q of '%s' is missing", name, c.node.NodeName()))
		}
		v = *spec.Default
	}

	if param, ok := pipeline.ParameterName(v); ok {
		pv, found := c.params[param]
		if !found {
			panic(fmt.Sprintf("runtime parameter %q required by '%s' was not supplied", param, c.node.NodeName()))
		}
		v = pv
	}

	converted, err := convert.Convert(v, spec.Type.Cty())
	if err != nil || converted.IsNull() {
		panic(fmt.Sprintf("property %q of '%s' does not hold a %s: %v", name, c.node.NodeName(), spec.Type, err))
	}
	return converted
}

// HasProperty reports whether the descriptor declares name.
func (c *Context) HasProperty(name string) bool {
	_, ok := c.props[name]
	return ok
}
