package pipeline

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

type runtimeParameter struct {
	name string
}

// RuntimeParameterType marks a property value that is supplied by the caller
// when the pipeline is run.
var RuntimeParameterType = cty.Capsule("runtime parameter", reflect.TypeOf(runtimeParameter{}))

// RuntimeParameter returns a placeholder for the named parameter.
func RuntimeParameter(name string) cty.Value {
	return cty.CapsuleVal(RuntimeParameterType, &runtimeParameter{name: name})
}

// ParameterName reports whether v is a runtime-parameter placeholder and, if
// so, which parameter it refers to.
func ParameterName(v cty.Value) (string, bool) {
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(RuntimeParameterType) {
		return "", false
	}
	return v.EncapsulatedValue().(*runtimeParameter).name, true
}
