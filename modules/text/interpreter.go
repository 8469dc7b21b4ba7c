package text

import (
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"golang.org/x/text/encoding/htmlindex"
)

type interpreter struct{}

func (interpreter) InputKind() iotype.Kind  { return iotype.File }
func (interpreter) OutputKind() iotype.Kind { return iotype.TextFile }

func (interpreter) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	file := in.(*iotype.FileValue)
	name := ec.Text("encoding")
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, ec.PropertyErrorf("encoding", "unknown encoding %q", name)
	}
	decoded, err := enc.NewDecoder().Bytes(file.Content)
	if err != nil {
		return nil, ec.PropertyErrorf("encoding", "%s is not valid %s: %v", file.Name, name, err)
	}

	lines := ec.Regex("line_break").Regexp().Split(string(decoded), -1)
	// A trailing line break terminates the last line rather than starting
	// an empty one.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	ec.Logger().Debug("Decoded text file.", "file", file.Name, "encoding", name, "lines", len(lines))
	return &iotype.TextFileValue{FileValue: *file, Lines: lines}, nil
}
