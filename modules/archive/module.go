// Package archive provides blocks that unpack archives into an in-memory
// file system and pick single files out of it.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Supported archive types.
const (
	Zip  = "zip"
	Gzip = "gz"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers ArchiveInterpreter and FilePicker.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(&meta.BlockType{
		Name:   "ArchiveInterpreter",
		Input:  iotype.File,
		Output: iotype.FileSystem,
		Properties: meta.Properties{
			"archive_type": {Type: valuetype.Of(valuetype.Text), Validate: validArchiveType,
				Docs: meta.Docs{Description: "Format of the archive: zip or gz."}},
		},
		Docs: meta.Docs{Description: "Unpacks an archive into a file system."},
	}, func() registry.Executor { return interpreter{} })

	r.RegisterBlock(&meta.BlockType{
		Name:   "FilePicker",
		Input:  iotype.FileSystem,
		Output: iotype.File,
		Properties: meta.Properties{
			"path": {Type: valuetype.Of(valuetype.Text),
				Docs: meta.Docs{Description: "Path of the file inside the file system, e.g. /data/cars.csv."}},
		},
		Docs: meta.Docs{Description: "Selects one file from a file system."},
	}, func() registry.Executor { return picker{} })
}

type interpreter struct{}

func (interpreter) InputKind() iotype.Kind  { return iotype.File }
func (interpreter) OutputKind() iotype.Kind { return iotype.FileSystem }

func (interpreter) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	file := in.(*iotype.FileValue)
	var (
		fsys *iotype.FileSystemValue
		err  error
	)
	switch kind := ec.Text("archive_type"); kind {
	case Zip:
		fsys, err = unzip(file.Content)
	case Gzip:
		fsys, err = gunzip(file)
	default:
		return nil, ec.PropertyErrorf("archive_type", "unsupported archive type %q", kind)
	}
	if err != nil {
		return nil, ec.Errorf("could not unpack %s: %v", file.Name, err)
	}
	ec.Logger().Debug("Unpacked archive.", "archive", file.Name, "files", len(fsys.Paths()))
	return fsys, nil
}

func unzip(content []byte) (*iotype.FileSystemValue, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	fsys := iotype.NewFileSystem()
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(zf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", zf.Name, err)
		}
		fsys.Put(zf.Name, iotype.NewFile(baseName(zf.Name), data))
	}
	return fsys, nil
}

func readZipFile(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func gunzip(file *iotype.FileValue) (*iotype.FileSystemValue, error) {
	zr, err := gzip.NewReader(bytes.NewReader(file.Content))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}

	name := zr.Name
	if name == "" {
		name = strings.TrimSuffix(file.Name, ".gz")
	}
	fsys := iotype.NewFileSystem()
	fsys.Put(name, iotype.NewFile(baseName(name), data))
	return fsys, nil
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func validArchiveType(v cty.Value) error {
	switch v.AsString() {
	case Zip, Gzip:
		return nil
	}
	return fmt.Errorf("unsupported archive type %q, expected %q or %q", v.AsString(), Zip, Gzip)
}

type picker struct{}

func (picker) InputKind() iotype.Kind  { return iotype.FileSystem }
func (picker) OutputKind() iotype.Kind { return iotype.File }

func (picker) Execute(ec *execution.Context, in iotype.Value) (iotype.Value, error) {
	fsys := in.(*iotype.FileSystemValue)
	p := ec.Text("path")
	f, ok := fsys.Get(p)
	if !ok {
		return nil, ec.PropertyErrorf("path", "no file at %q, the file system holds %s", p, strings.Join(fsys.Paths(), ", "))
	}
	return f, nil
}
