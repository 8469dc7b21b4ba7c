package valuetype

import (
	"fmt"
	"regexp"

	"github.com/zclconf/go-cty/cty"
)

// Pattern is a compiled regular expression that remembers its source and
// keeps an anchored variant for whole-value matching.
type Pattern struct {
	source string
	re     *regexp.Regexp
	full   *regexp.Regexp
}

// ParsePattern compiles src. Pipelines are checked with it while loading,
// so executors can assume every Pattern they receive is well formed.
func ParsePattern(src string) (*Pattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", src, err)
	}
	return &Pattern{
		source: src,
		re:     re,
		full:   regexp.MustCompile(`^(?:` + src + `)$`),
	}, nil
}

// MustPattern is like ParsePattern but panics on error.
func MustPattern(src string) *Pattern {
	p, err := ParsePattern(src)
	if err != nil {
		panic(err)
	}
	return p
}

// MatchFull reports whether the entire string matches.
func (p *Pattern) MatchFull(s string) bool { return p.full.MatchString(s) }

// Regexp exposes the unanchored expression.
func (p *Pattern) Regexp() *regexp.Regexp { return p.re }

func (p *Pattern) String() string { return p.source }

// PatternVal wraps p in a cty capsule value.
func PatternVal(p *Pattern) cty.Value {
	return cty.CapsuleVal(RegexType, p)
}
