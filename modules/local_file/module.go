// Package local_file provides the LocalFileExtractor block.
package local_file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "LocalFileExtractor",
		Input:  iotype.Nothing,
		Output: iotype.File,
		Properties: meta.Properties{
			"file_path": {Type: valuetype.Of(valuetype.Text), Validate: noParentRefs,
				Docs: meta.Docs{Description: "Path of the file, relative to the working directory."}},
		},
		Docs: meta.Docs{Description: "Reads a file from the local file system."},
	}, func() registry.Executor { return extractor{} })
}

type extractor struct{}

func (extractor) InputKind() iotype.Kind  { return iotype.Nothing }
func (extractor) OutputKind() iotype.Kind { return iotype.File }

func (extractor) Execute(ec *execution.Context, _ iotype.Value) (iotype.Value, error) {
	path := ec.Text("file_path")
	if err := noParentRefs(cty.StringVal(path)); err != nil {
		return nil, ec.PropertyErrorf("file_path", "%v", err)
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ec.PropertyErrorf("file_path", "file %q does not exist", path)
	}
	if err != nil {
		return nil, ec.PropertyErrorf("file_path", "failed to read %q: %v", path, err)
	}
	ec.Logger().Debug("Read local file.", "path", path, "bytes", len(content))
	return iotype.NewFile(filepath.Base(path), content), nil
}

func noParentRefs(v cty.Value) error {
	for _, part := range strings.Split(filepath.ToSlash(v.AsString()), "/") {
		if part == ".." {
			return fmt.Errorf("path %q must not refer to parent directories", v.AsString())
		}
	}
	return nil
}
