package valuetype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

var (
	integerSyntax = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalSyntax = regexp.MustCompile(`^[+-]?([0-9]*[,.])?[0-9]+([eE][-+]?[0-9]+)?$`)
)

// Parse interprets raw cell text as a value of the scalar primitive p.
func Parse(p Primitive, raw string) (cty.Value, error) {
	switch p {
	case Text, Untyped:
		return cty.StringVal(raw), nil
	case Integer:
		if !integerSyntax.MatchString(raw) {
			return cty.NilVal, fmt.Errorf("%q is not an integer", raw)
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%q is not an integer: %w", raw, err)
		}
		return cty.NumberIntVal(n), nil
	case Decimal:
		if !decimalSyntax.MatchString(raw) {
			return cty.NilVal, fmt.Errorf("%q is not a decimal", raw)
		}
		f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%q is not a decimal: %w", raw, err)
		}
		return cty.NumberFloatVal(f), nil
	case Boolean:
		switch strings.ToLower(raw) {
		case "true":
			return cty.True, nil
		case "false":
			return cty.False, nil
		}
		return cty.NilVal, fmt.Errorf("%q is not a boolean", raw)
	}
	return cty.NilVal, fmt.Errorf("%s is not a scalar type", p)
}
