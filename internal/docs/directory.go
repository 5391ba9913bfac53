package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DirectoryBinding reaches files through a live handle to one directory.
// Every access goes through the permission gate; only direct children of the
// directory are resolvable.
type DirectoryBinding struct {
	fs   afero.Fs
	root string
	ext  string
	perm Permission
}

// NewDirectoryBinding binds root on fs. ext filters Names (e.g. ".pdf"); an
// empty ext lists every regular file.
func NewDirectoryBinding(fs afero.Fs, root, ext string, perm Permission) *DirectoryBinding {
	return &DirectoryBinding{fs: fs, root: filepath.Clean(root), ext: ext, perm: perm}
}

// OpenDirectory binds a directory of the local filesystem.
func OpenDirectory(root, ext string, prompter Prompter) (*DirectoryBinding, *SessionPermission) {
	fs := afero.NewOsFs()
	perm := NewSessionPermission(fs, root, prompter)
	return NewDirectoryBinding(fs, root, ext, perm), perm
}

func (b *DirectoryBinding) Mode() Mode       { return ModeHandle }
func (b *DirectoryBinding) Describe() string { return b.root }

// Root returns the bound directory.
func (b *DirectoryBinding) Root() string { return b.root }

// authorize checks the grant and prompts when the state is still open.
func (b *DirectoryBinding) authorize(ctx context.Context) error {
	state, err := b.perm.Query(ctx)
	if err != nil {
		return err
	}
	if state == PermissionPrompt {
		state, err = b.perm.Request(ctx)
		if err != nil {
			return err
		}
	}
	if state != PermissionGranted {
		return ErrPermissionDenied
	}
	return nil
}

func (b *DirectoryBinding) Open(ctx context.Context, name string) (*Document, error) {
	if err := b.authorize(ctx); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid name", ErrNotFound)
	}

	p := filepath.Join(b.root, name)
	info, err := b.fs.Stat(p)
	if err != nil {
		return nil, classify(err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return newDocument(b.fs, p, info), nil
}

func (b *DirectoryBinding) Names(ctx context.Context) ([]string, error) {
	if err := b.authorize(ctx); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(b.fs, b.root)
	if err != nil {
		return nil, classify(err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() || !hasExt(fi.Name(), b.ext) {
			continue
		}
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrNotFound, err)
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func hasExt(name, ext string) bool {
	if ext == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}
