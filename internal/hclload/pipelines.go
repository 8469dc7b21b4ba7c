package hclload

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/tabflow/internal/pipeline"
)

var pipelineSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "block", LabelNames: []string{"name"}},
		{Type: "pipe"},
	},
}

type pipeSpec struct {
	From  string   `hcl:"from,optional"`
	To    string   `hcl:"to,optional"`
	Chain []string `hcl:"chain,optional"`
}

func (l *Loader) decodePipeline(b *hcl.Block, res *Result) (*pipeline.Pipeline, hcl.Diagnostics) {
	p := &pipeline.Pipeline{Name: b.Labels[0], Range: b.DefRange}
	content, diags := b.Body.Content(pipelineSchema)
	ectx := l.evalContext(res)

	for _, bb := range content.Blocks.OfType("block") {
		blk, bDiags := l.decodeBlock(bb, ectx, res)
		diags = append(diags, bDiags...)
		if blk == nil {
			continue
		}
		if _, dup := p.Block(blk.Name); dup {
			diags = append(diags, duplicate("block", blk.Name, bb.DefRange))
			continue
		}
		p.Blocks = append(p.Blocks, blk)
	}

	for _, pb := range content.Blocks.OfType("pipe") {
		var spec pipeSpec
		pDiags := gohcl.DecodeBody(pb.Body, nil, &spec)
		diags = append(diags, pDiags...)
		if pDiags.HasErrors() {
			continue
		}
		chain := spec.Chain
		if len(chain) == 0 {
			chain = []string{spec.From, spec.To}
		}
		mixed := len(spec.Chain) > 0 && (spec.From != "" || spec.To != "")
		if mixed || len(chain) < 2 || slices.Contains(chain, "") {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid pipe",
				Detail:   "A pipe needs either \"from\" and \"to\", or a \"chain\" of at least two blocks.",
				Subject:  pb.DefRange.Ptr(),
			})
			continue
		}
		for i := 0; i+1 < len(chain); i++ {
			p.Pipes = append(p.Pipes, pipeline.Pipe{From: chain[i], To: chain[i+1], Range: pb.DefRange})
		}
	}

	diags = append(diags, l.checkPipes(p)...)
	if diags.HasErrors() {
		return nil, diags
	}
	return p, diags
}

func (l *Loader) decodeBlock(b *hcl.Block, ectx *hcl.EvalContext, res *Result) (*pipeline.Block, hcl.Diagnostics) {
	name := b.Labels[0]
	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	typeName, tDiags := typeAttr(attrs, "block "+name, b.DefRange)
	diags = append(diags, tDiags...)
	if tDiags.HasErrors() {
		return nil, diags
	}
	bt, ok := l.catalogue.BlockType(typeName)
	if !ok {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown block type",
			Detail:   fmt.Sprintf("Block %q uses type %q, which does not exist.", name, typeName),
			Subject:  attrs["type"].Expr.Range().Ptr(),
		})
	}

	owner := fmt.Sprintf("block %q (%s)", name, typeName)
	props, pDiags := l.decodeProperties(owner, attrs, map[string]bool{"type": true}, bt.Properties, ectx, res, b.DefRange)
	diags = append(diags, pDiags...)
	if pDiags.HasErrors() {
		return nil, diags
	}
	return &pipeline.Block{Name: name, Type: typeName, Properties: props, Range: b.DefRange}, diags
}

// checkPipes verifies that pipes connect existing blocks with matching data
// kinds and that no block has more than one input.
func (l *Loader) checkPipes(p *pipeline.Pipeline) hcl.Diagnostics {
	var diags hcl.Diagnostics
	inbound := make(map[string]int)

	for _, pipe := range p.Pipes {
		from, okFrom := p.Block(pipe.From)
		to, okTo := p.Block(pipe.To)
		for _, missing := range []struct {
			name string
			ok   bool
		}{{pipe.From, okFrom}, {pipe.To, okTo}} {
			if !missing.ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown block in pipe",
					Detail:   fmt.Sprintf("Pipeline %q has no block named %q.", p.Name, missing.name),
					Subject:  pipe.Range.Ptr(),
				})
			}
		}
		if !okFrom || !okTo {
			continue
		}
		if pipe.From == pipe.To {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid pipe",
				Detail:   fmt.Sprintf("Block %q cannot be piped into itself.", pipe.From),
				Subject:  pipe.Range.Ptr(),
			})
			continue
		}

		out := l.catalogue.MustBlockType(from.Type).Output
		in := l.catalogue.MustBlockType(to.Type).Input
		if out != in {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Mismatched data kinds",
				Detail:   fmt.Sprintf("%q produces %s but %q consumes %s.", pipe.From, out, pipe.To, in),
				Subject:  pipe.Range.Ptr(),
			})
			continue
		}

		inbound[pipe.To]++
		if inbound[pipe.To] == 2 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Too many inputs",
				Detail:   fmt.Sprintf("Block %q already receives input from another pipe.", pipe.To),
				Subject:  pipe.Range.Ptr(),
			})
		}
	}

	if diags.HasErrors() {
		return diags
	}

	// With at most one input per block, a cycle is a ring of blocks each
	// feeding the next; follow inputs back from every block to find one.
	parent := make(map[string]string)
	for _, pipe := range p.Pipes {
		parent[pipe.To] = pipe.From
	}
	for _, b := range p.Blocks {
		seen := map[string]bool{b.Name: true}
		for cur, ok := parent[b.Name]; ok; cur, ok = parent[cur] {
			if cur == b.Name {
				return append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Cyclic pipeline",
					Detail:   fmt.Sprintf("Block %q is part of a cycle.", b.Name),
					Subject:  b.Range.Ptr(),
				})
			}
			if seen[cur] {
				break
			}
			seen[cur] = true
		}
	}
	return diags
}
