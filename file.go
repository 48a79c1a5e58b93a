package i18nprep

import (
	"io"
	"path/filepath"
	"strings"
)

// File is one input or output document.
//
// Path is the file's location, Cwd the working directory it was read
// relative to and Base the glob base it was matched under.
type File struct {
	Path     string
	Base     string
	Cwd      string
	Contents []byte
	Stream   io.Reader
}

// IsNull reports whether f carries no contents.
func (f *File) IsNull() bool {
	return f.Contents == nil && f.Stream == nil
}

// IsStream reports whether f carries streamed contents.
func (f *File) IsStream() bool {
	return f.Stream != nil
}

// Dir returns the directory of f.
func (f *File) Dir() string {
	if f.Path == "" {
		return strings.TrimSuffix(f.Base, string(filepath.Separator))
	}
	return filepath.Dir(f.Path)
}

// Basename returns the file name of f without its extension.
func (f *File) Basename() string {
	name := filepath.Base(f.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// sibling returns a file named name in the same directory as f.
func (f *File) sibling(name string, contents []byte) *File {
	return &File{
		Path:     filepath.Join(f.Dir(), name),
		Base:     f.Base,
		Cwd:      f.Cwd,
		Contents: contents,
	}
}

// assetPath returns the directory of f relative to cwd/sourceRoot, with a
// leading and trailing slash.
func (f *File) assetPath(sourceRoot string) string {
	dir := filepath.Clean(f.Dir())
	root := filepath.Join(f.Cwd, sourceRoot)
	if dir == root {
		return "/"
	}
	if rest, ok := strings.CutPrefix(dir, root+string(filepath.Separator)); ok {
		return "/" + filepath.ToSlash(rest) + "/"
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.ToSlash(dir) + "/"
	}
	return filepath.ToSlash(rel) + "/"
}
