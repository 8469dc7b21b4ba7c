// Package hclload reads pipeline files written in HCL and turns them into
// validated pipeline models.
//
// A file declares constraints, value types and pipelines:
//
//	constraint "ShortText" {
//	  type       = "LengthConstraint"
//	  max_length = 20
//	}
//
//	valuetype "Name" {
//	  base        = "text"
//	  constraints = [constraint.ShortText]
//	}
//
//	pipeline "Cars" {
//	  block "Extractor" {
//	    type = "HttpExtractor"
//	    url  = requires("CARS_URL")
//	  }
//	  pipe {
//	    chain = ["Extractor", "Interpreter"]
//	  }
//	}
//
// Everything the runner relies on is checked here and reported as HCL
// diagnostics: unknown types and properties, property types, required
// properties, pipe endpoints and data kinds.
package hclload

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/fsutil"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Result is everything declared in the files of one load.
type Result struct {
	Pipelines   []*pipeline.Pipeline
	ValueTypes  map[string]*valuetype.ValueType
	Constraints map[string]*valuetype.Constraint
}

// Pipeline looks up a pipeline by name.
func (r *Result) Pipeline(name string) (*pipeline.Pipeline, bool) {
	for _, p := range r.Pipelines {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Options tune loading.
type Options struct {
	// Params, when non-nil, are the runtime parameters that will be
	// supplied; a requires() call naming anything else is an error.
	Params map[string]cty.Value
}

// Loader parses and validates pipeline files against a catalogue.
type Loader struct {
	catalogue *meta.Catalogue
	parser    *hclparse.Parser
	opts      Options
}

// New creates a loader. The parser it keeps remembers every file read so
// diagnostics can be rendered with source snippets.
func New(cat *meta.Catalogue, opts Options) *Loader {
	return &Loader{catalogue: cat, parser: hclparse.NewParser(), opts: opts}
}

// Files returns the sources parsed so far, keyed by filename.
func (l *Loader) Files() map[string]*hcl.File { return l.parser.Files() }

// LoadFile reads and validates the file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, hcl.Diagnostics) {
	ctxlog.FromContext(ctx).Debug("Parsing pipeline file.", "path", path)
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	return l.load(ctx, file.Body, path)
}

// LoadPath loads a single pipeline file, or every .hcl file below a
// directory. Declarations from all files of a directory share one namespace.
func (l *Loader) LoadPath(ctx context.Context, path string) (*Result, hcl.Diagnostics) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read pipeline path",
			Detail:   fmt.Sprintf("Cannot read %s: %v.", path, err),
		}}
	}
	if !info.IsDir() {
		return l.LoadFile(ctx, path)
	}

	paths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read pipeline directory",
			Detail:   fmt.Sprintf("Cannot list %s: %v.", path, err),
		}}
	}
	if len(paths) == 0 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "No pipeline files",
			Detail:   fmt.Sprintf("The directory %s contains no .hcl files.", path),
		}}
	}
	ctxlog.FromContext(ctx).Debug("Parsing pipeline directory.", "path", path, "files", len(paths))

	var (
		files []*hcl.File
		diags hcl.Diagnostics
	)
	for _, p := range paths {
		file, fDiags := l.parser.ParseHCLFile(p)
		diags = append(diags, fDiags...)
		if file != nil {
			files = append(files, file)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	res, lDiags := l.load(ctx, hcl.MergeFiles(files), path)
	return res, append(diags, lDiags...)
}

// LoadSource validates in-memory source as if read from filename.
func (l *Loader) LoadSource(ctx context.Context, src []byte, filename string) (*Result, hcl.Diagnostics) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return l.load(ctx, file.Body, filename)
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "constraint", LabelNames: []string{"name"}},
		{Type: "valuetype", LabelNames: []string{"name"}},
		{Type: "pipeline", LabelNames: []string{"name"}},
	},
}

func (l *Loader) load(ctx context.Context, body hcl.Body, source string) (*Result, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	content, diags := body.Content(rootSchema)

	res := &Result{
		ValueTypes:  make(map[string]*valuetype.ValueType),
		Constraints: make(map[string]*valuetype.Constraint),
	}

	// Constraints, then value types, then pipelines: each may only refer to
	// the kinds declared before it.
	for _, b := range content.Blocks.OfType("constraint") {
		c, cDiags := l.decodeConstraint(b)
		diags = append(diags, cDiags...)
		if c == nil {
			continue
		}
		if _, dup := res.Constraints[c.Name]; dup {
			diags = append(diags, duplicate("constraint", c.Name, b.DefRange))
			continue
		}
		res.Constraints[c.Name] = c
	}

	for _, b := range content.Blocks.OfType("valuetype") {
		vt, vDiags := l.decodeValueType(b, res)
		diags = append(diags, vDiags...)
		if vt == nil {
			continue
		}
		if _, dup := res.ValueTypes[vt.Name]; dup {
			diags = append(diags, duplicate("valuetype", vt.Name, b.DefRange))
			continue
		}
		res.ValueTypes[vt.Name] = vt
	}

	for _, b := range content.Blocks.OfType("pipeline") {
		p, pDiags := l.decodePipeline(b, res)
		diags = append(diags, pDiags...)
		if p == nil {
			continue
		}
		if _, dup := res.Pipeline(p.Name); dup {
			diags = append(diags, duplicate("pipeline", p.Name, b.DefRange))
			continue
		}
		res.Pipelines = append(res.Pipelines, p)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	logger.Debug("Pipelines loaded.", "source", source,
		"pipelines", len(res.Pipelines), "valuetypes", len(res.ValueTypes), "constraints", len(res.Constraints))
	return res, diags
}

// evalContext exposes declared constraints and value types to expressions.
func (l *Loader) evalContext(res *Result) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	if len(res.Constraints) > 0 {
		cons := make(map[string]cty.Value, len(res.Constraints))
		for name, c := range res.Constraints {
			cons[name] = valuetype.ConstraintVal(c)
		}
		vars["constraint"] = cty.ObjectVal(cons)
	}
	if len(res.ValueTypes) > 0 {
		vts := make(map[string]cty.Value, len(res.ValueTypes))
		for name := range res.ValueTypes {
			vts[name] = cty.StringVal(name)
		}
		vars["valuetype"] = cty.ObjectVal(vts)
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions()}
}

func duplicate(kind, name string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Duplicate %s", kind),
		Detail:   fmt.Sprintf("A %s named %q is already declared.", kind, name),
		Subject:  rng.Ptr(),
	}
}

func sortedAttrs(attrs hcl.Attributes) []*hcl.Attribute {
	out := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
