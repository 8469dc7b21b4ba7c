// Package pipeline holds the immutable, already-validated pipeline model the
// runner executes: named blocks with concrete property values, and the pipes
// connecting them.
package pipeline

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Block is one configured block instance.
type Block struct {
	Name       string
	Type       string
	Properties map[string]cty.Value
	Range      hcl.Range
}

// NodeName returns the block's name.
func (b *Block) NodeName() string { return b.Name }

// TypeName returns the block's type name.
func (b *Block) TypeName() string { return b.Type }

// Property returns the value assigned to name, if any.
func (b *Block) Property(name string) (cty.Value, bool) {
	v, ok := b.Properties[name]
	return v, ok
}

// SourceRange returns the block's location in its source file.
func (b *Block) SourceRange() hcl.Range { return b.Range }

// Pipe is a directed edge carrying the output of From into To.
type Pipe struct {
	From  string
	To    string
	Range hcl.Range
}

func (p Pipe) String() string { return fmt.Sprintf("%s -> %s", p.From, p.To) }

// Pipeline is a named graph of blocks.
type Pipeline struct {
	Name   string
	Blocks []*Block
	Pipes  []Pipe
	Range  hcl.Range
}

// Block looks up a block by name.
func (p *Pipeline) Block(name string) (*Block, bool) {
	for _, b := range p.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Inbound returns the pipes ending at the named block.
func (p *Pipeline) Inbound(name string) []Pipe {
	var out []Pipe
	for _, pipe := range p.Pipes {
		if pipe.To == name {
			out = append(out, pipe)
		}
	}
	return out
}
