package iotype

import (
	"mime"
	"path"
	"sort"
	"strings"
)

// FileValue is a named binary blob.
type FileValue struct {
	Name      string
	Extension string
	MimeType  string
	Content   []byte
}

// NewFile derives extension and MIME type from name.
func NewFile(name string, content []byte) *FileValue {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	mt := mime.TypeByExtension(path.Ext(name))
	if mt == "" {
		mt = "application/octet-stream"
	}
	return &FileValue{Name: name, Extension: ext, MimeType: mt, Content: content}
}

func (*FileValue) Kind() Kind { return File }

// TextFileValue is a file decoded into lines.
type TextFileValue struct {
	FileValue
	Lines []string
}

func (*TextFileValue) Kind() Kind { return TextFile }

// WithLines returns a copy of t holding the given lines.
func (t *TextFileValue) WithLines(lines []string) *TextFileValue {
	return &TextFileValue{FileValue: t.FileValue, Lines: lines}
}

// FileSystemValue is an in-memory tree of files addressed by slash paths.
type FileSystemValue struct {
	files map[string]*FileValue
}

// NewFileSystem returns an empty file system.
func NewFileSystem() *FileSystemValue {
	return &FileSystemValue{files: make(map[string]*FileValue)}
}

func (*FileSystemValue) Kind() Kind { return FileSystem }

// Put stores f under p. Paths are cleaned and made absolute.
func (fs *FileSystemValue) Put(p string, f *FileValue) {
	fs.files[normalize(p)] = f
}

// Get looks up a file by path.
func (fs *FileSystemValue) Get(p string) (*FileValue, bool) {
	f, ok := fs.files[normalize(p)]
	return f, ok
}

// Paths lists every stored path in lexical order.
func (fs *FileSystemValue) Paths() []string {
	out := make([]string, 0, len(fs.files))
	for p := range fs.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func normalize(p string) string {
	return path.Clean("/" + p)
}
