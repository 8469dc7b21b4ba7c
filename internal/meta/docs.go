package meta

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteDocs renders every registered type as commented HCL, suitable as a
// reference of the built-in library.
func (c *Catalogue) WriteDocs(w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for _, name := range c.ConstraintTypeNames() {
		ct := c.constraints[name]
		appendComment(body, ct.Docs.Description)
		blk := body.AppendNewBlock("constraint_type", []string{ct.Name})
		compatible := make([]cty.Value, 0, len(ct.Compatible))
		for _, p := range ct.Compatible {
			compatible = append(compatible, cty.StringVal(p.String()))
		}
		if len(compatible) > 0 {
			blk.Body().SetAttributeValue("applies_to", cty.ListVal(compatible))
		}
		writeProperties(blk.Body(), ct.Properties)
		body.AppendNewline()
	}

	for _, name := range c.BlockTypeNames() {
		bt := c.blocks[name]
		appendComment(body, bt.Docs.Description)
		for i, ex := range bt.Docs.Examples {
			appendComment(body, fmt.Sprintf("Example %d: %s\n%s", i+1, ex.Description, ex.Code))
		}
		blk := body.AppendNewBlock("block_type", []string{bt.Name})
		blk.Body().SetAttributeValue("input", cty.StringVal(bt.Input.String()))
		blk.Body().SetAttributeValue("output", cty.StringVal(bt.Output.String()))
		writeProperties(blk.Body(), bt.Properties)
		body.AppendNewline()
	}

	_, err := w.Write(f.Bytes())
	return err
}

func writeProperties(body *hclwrite.Body, props Properties) {
	for _, name := range sortedKeys(props) {
		spec := props[name]
		body.AppendNewline()
		appendComment(body, spec.Docs.Description)
		pb := body.AppendNewBlock("property", []string{name}).Body()
		pb.SetAttributeValue("type", cty.StringVal(spec.Type.String()))
		if spec.Default != nil {
			pb.SetAttributeValue("default", docValue(*spec.Default))
		}
	}
}

// docValue makes v printable by hclwrite, which cannot render capsules.
func docValue(v cty.Value) cty.Value {
	ty := v.Type()
	switch {
	case ty.IsCapsuleType():
		return cty.StringVal(fmt.Sprint(v.EncapsulatedValue()))
	case ty.IsListType() && ty.ElementType().IsCapsuleType():
		if v.LengthInt() == 0 {
			return cty.EmptyTupleVal
		}
		elems := make([]cty.Value, 0, v.LengthInt())
		for _, e := range v.AsValueSlice() {
			elems = append(elems, docValue(e))
		}
		return cty.TupleVal(elems)
	}
	return v
}

func appendComment(body *hclwrite.Body, text string) {
	if text == "" {
		return
	}
	var toks hclwrite.Tokens
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		toks = append(toks, &hclwrite.Token{
			Type:  hclsyntax.TokenComment,
			Bytes: []byte(strings.TrimRight("# "+line, " ") + "\n"),
		})
	}
	body.AppendUnstructuredTokens(toks)
}
