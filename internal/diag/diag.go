// Package diag carries recoverable failures between components. A
// Diagnostic names the pipeline node it originates from and, optionally,
// the property at fault. Diagnostics satisfy error so they travel through
// ordinary Go error returns.
package diag

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Severity mirrors hcl.DiagnosticSeverity for the two levels the
// interpreter emits.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Node identifies the source element a diagnostic refers to.
type Node struct {
	Name  string
	Range hcl.Range
}

// Diagnostic is a structured, source-located failure description.
type Diagnostic struct {
	Severity Severity
	Message  string
	Node     Node
	Property string
}

// Errorf creates an error-severity diagnostic for node.
func Errorf(node Node, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Node: node}
}

// Warnf creates a warning-severity diagnostic for node.
func Warnf(node Node, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Node: node}
}

// OnProperty returns a copy of d attributed to the named property.
func (d *Diagnostic) OnProperty(name string) *Diagnostic {
	cp := *d
	cp.Property = name
	return &cp
}

func (d *Diagnostic) Error() string {
	if d.Property != "" {
		return fmt.Sprintf("%s (property %q): %s", d.Node.Name, d.Property, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Node.Name, d.Message)
}

// From returns err as a Diagnostic. Plain errors are attributed to node.
func From(err error, node Node) *Diagnostic {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return &Diagnostic{Severity: Error, Message: err.Error(), Node: node}
}

// HCL converts d for rendering with the hcl diagnostic writers.
func (d *Diagnostic) HCL() *hcl.Diagnostic {
	sev := hcl.DiagError
	if d.Severity == Warning {
		sev = hcl.DiagWarning
	}
	summary := d.Message
	detail := ""
	if d.Property != "" {
		detail = fmt.Sprintf("Reported on property %q of %s.", d.Property, d.Node.Name)
	}
	var subject *hcl.Range
	if d.Node.Range.Filename != "" {
		rng := d.Node.Range
		subject = &rng
	}
	return &hcl.Diagnostic{Severity: sev, Summary: summary, Detail: detail, Subject: subject}
}

// List is an ordered collection of diagnostics.
type List []*Diagnostic

// HCL converts every entry.
func (l List) HCL() hcl.Diagnostics {
	out := make(hcl.Diagnostics, 0, len(l))
	for _, d := range l {
		out = append(out, d.HCL())
	}
	return out
}

// Sink accumulates diagnostics reported during a run. It is safe for
// concurrent use.
type Sink struct {
	mu    sync.Mutex
	items List
}

// Report appends d.
func (s *Sink) Report(d *Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Items returns a snapshot of everything reported so far.
func (s *Sink) Items() List {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(List, len(s.items))
	copy(out, s.items)
	return out
}
