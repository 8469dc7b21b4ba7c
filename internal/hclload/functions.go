package hclload

import (
	"fmt"

	"github.com/vk/tabflow/internal/cells"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// functions returns the HCL functions available in pipeline files.
func functions() map[string]function.Function {
	return map[string]function.Function{
		"requires": function.New(&function.Spec{
			Description: "Marks a value supplied as a runtime parameter when the pipeline runs.",
			Params:      []function.Parameter{{Name: "name", Type: cty.String}},
			Type:        function.StaticReturnType(pipeline.RuntimeParameterType),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				return pipeline.RuntimeParameter(args[0].AsString()), nil
			},
		}),
		"cell":   rangeFunc("A single cell, e.g. cell(\"B2\").", cellRange),
		"range":  rangeFunc("A rectangular range, e.g. range(\"A1:C*\").", cells.ParseRange),
		"column": rangeFunc("An entire column, e.g. column(\"C\").", columnRange),
		"row": function.New(&function.Spec{
			Description: "An entire row by 1-based number; negative numbers count from the end.",
			Params:      []function.Parameter{{Name: "number", Type: cty.Number}},
			Type:        function.StaticReturnType(valuetype.CellRangeType),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				bf := args[0].AsBigFloat()
				if !bf.IsInt() {
					return cty.NilVal, fmt.Errorf("row number must be a whole number")
				}
				n, _ := bf.Int64()
				switch {
				case n > 0:
					return valuetype.CellRangeVal(cells.Row(int(n - 1))), nil
				case n < 0:
					return valuetype.CellRangeVal(cells.Row(int(n))), nil
				}
				return cty.NilVal, fmt.Errorf("rows are numbered from 1")
			},
		}),
		"regex": function.New(&function.Spec{
			Description: "A regular expression.",
			Params:      []function.Parameter{{Name: "pattern", Type: cty.String}},
			Type:        function.StaticReturnType(valuetype.RegexType),
			Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
				p, err := valuetype.ParsePattern(args[0].AsString())
				if err != nil {
					return cty.NilVal, err
				}
				return valuetype.PatternVal(p), nil
			},
		}),
	}
}

func rangeFunc(description string, parse func(string) (cells.Range, error)) function.Function {
	return function.New(&function.Spec{
		Description: description,
		Params:      []function.Parameter{{Name: "ref", Type: cty.String}},
		Type:        function.StaticReturnType(valuetype.CellRangeType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			r, err := parse(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return valuetype.CellRangeVal(r), nil
		},
	})
}

func cellRange(ref string) (cells.Range, error) {
	idx, err := cells.ParseIndex(ref)
	if err != nil {
		return cells.Range{}, err
	}
	return cells.Cell(idx), nil
}

func columnRange(ref string) (cells.Range, error) {
	col, err := cells.ColumnIndex(ref)
	if err != nil {
		return cells.Range{}, err
	}
	return cells.Column(col), nil
}
