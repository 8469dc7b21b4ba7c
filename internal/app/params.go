package app

import (
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// runtimeParams merges parameters from the environment with the configured
// ones. Every value is text; blocks convert it to the type of the property
// that requires it.
func runtimeParams(environ []string, prefix string, explicit map[string]string) map[string]cty.Value {
	params := make(map[string]cty.Value)
	if prefix != "" {
		for _, e := range environ {
			key, value, ok := strings.Cut(e, "=")
			if !ok || !strings.HasPrefix(key, prefix) || key == prefix {
				continue
			}
			params[strings.TrimPrefix(key, prefix)] = cty.StringVal(value)
		}
	}
	for name, value := range explicit {
		params[name] = cty.StringVal(value)
	}
	return params
}

func paramNames(params map[string]cty.Value) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
