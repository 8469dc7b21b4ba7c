package meta

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Catalogue maps type names to descriptors.
type Catalogue struct {
	blocks      map[string]*BlockType
	constraints map[string]*ConstraintType
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		blocks:      make(map[string]*BlockType),
		constraints: make(map[string]*ConstraintType),
	}
}

// RegisterBlockType adds a block descriptor.
func (c *Catalogue) RegisterBlockType(bt *BlockType) {
	if _, exists := c.blocks[bt.Name]; exists {
		panic(fmt.Sprintf("block type '%s' already registered", bt.Name))
	}
	slog.Debug("Registering block type.", "name", bt.Name, "input", bt.Input, "output", bt.Output)
	c.blocks[bt.Name] = bt
}

// RegisterConstraintType adds a constraint descriptor.
func (c *Catalogue) RegisterConstraintType(ct *ConstraintType) {
	if _, exists := c.constraints[ct.Name]; exists {
		panic(fmt.Sprintf("constraint type '%s' already registered", ct.Name))
	}
	slog.Debug("Registering constraint type.", "name", ct.Name)
	c.constraints[ct.Name] = ct
}

// BlockType looks up a block descriptor.
func (c *Catalogue) BlockType(name string) (*BlockType, bool) {
	bt, ok := c.blocks[name]
	return bt, ok
}

// MustBlockType is like BlockType but panics when name is unknown. The
// loader rejects unknown types, so a miss here is a broken contract.
func (c *Catalogue) MustBlockType(name string) *BlockType {
	bt, ok := c.blocks[name]
	if !ok {
		panic(fmt.Sprintf("block type '%s' is not registered", name))
	}
	return bt
}

// ConstraintType looks up a constraint descriptor.
func (c *Catalogue) ConstraintType(name string) (*ConstraintType, bool) {
	ct, ok := c.constraints[name]
	return ct, ok
}

// MustConstraintType is like ConstraintType but panics when name is unknown.
func (c *Catalogue) MustConstraintType(name string) *ConstraintType {
	ct, ok := c.constraints[name]
	if !ok {
		panic(fmt.Sprintf("constraint type '%s' is not registered", name))
	}
	return ct
}

// IsCompatible reports whether constraints of the named type may attach to
// values of primitive p.
func (c *Catalogue) IsCompatible(constraintType string, p valuetype.Primitive) bool {
	ct, ok := c.constraints[constraintType]
	if !ok {
		return false
	}
	return slices.Contains(ct.Compatible, p)
}

// BlockTypeNames lists registered block types in lexical order.
func (c *Catalogue) BlockTypeNames() []string {
	return sortedKeys(c.blocks)
}

// ConstraintTypeNames lists registered constraint types in lexical order.
func (c *Catalogue) ConstraintTypeNames() []string {
	return sortedKeys(c.constraints)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CheckProperty converts v to the type declared by spec and runs the
// spec's validation hook. It returns the converted value.
func CheckProperty(spec PropertySpec, v cty.Value) (cty.Value, error) {
	want := spec.Type.Cty()
	converted, err := convert.Convert(v, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected %s: %w", spec.Type, err)
	}
	if converted.IsNull() {
		return cty.NilVal, fmt.Errorf("expected %s, got null", spec.Type)
	}
	if spec.Type.Primitive == valuetype.Integer && !converted.AsBigFloat().IsInt() {
		return cty.NilVal, fmt.Errorf("expected %s, got a fractional number", spec.Type)
	}
	if spec.Validate != nil {
		if err := spec.Validate(converted); err != nil {
			return cty.NilVal, err
		}
	}
	return converted, nil
}
