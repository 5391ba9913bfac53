package docs

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// FileMapBinding is a one-time capture of selected files keyed by base name.
// It needs no permission; it is lost when the session ends.
type FileMapBinding struct {
	label string
	files map[string]*Document
}

// NewFileMap builds a binding from already materialized documents. Later
// documents win on duplicate names.
func NewFileMap(label string, docs ...*Document) *FileMapBinding {
	m := &FileMapBinding{label: label, files: make(map[string]*Document, len(docs))}
	for _, d := range docs {
		m.files[d.Name] = d
	}
	return m
}

// ScanFiles walks root recursively and captures every file whose extension
// matches ext, keyed by base name. This stands in for a multi-file picker
// over a folder tree.
func ScanFiles(fs afero.Fs, root, ext string) (*FileMapBinding, error) {
	m := &FileMapBinding{label: root, files: map[string]*Document{}}
	err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasExt(info.Name(), ext) {
			return nil
		}
		m.files[info.Name()] = newDocument(fs, p, info)
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return m, nil
}

// SelectFiles captures an explicit list of paths.
func SelectFiles(fs afero.Fs, paths ...string) (*FileMapBinding, error) {
	m := &FileMapBinding{label: "selecção de ficheiros", files: make(map[string]*Document, len(paths))}
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil {
			return nil, classify(err)
		}
		if info.IsDir() {
			continue
		}
		m.files[filepath.Base(p)] = newDocument(fs, p, info)
	}
	return m, nil
}

func (m *FileMapBinding) Mode() Mode       { return ModeFiles }
func (m *FileMapBinding) Describe() string { return m.label }

// Len returns the number of captured files.
func (m *FileMapBinding) Len() int { return len(m.files) }

// Present reports whether name was captured.
func (m *FileMapBinding) Present(name string) bool {
	_, ok := m.files[name]
	return ok
}

func (m *FileMapBinding) Open(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}
	d, ok := m.files[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *FileMapBinding) Names(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
