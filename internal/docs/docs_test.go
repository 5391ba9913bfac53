package docs

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermission struct {
	state    PermissionState
	answer   PermissionState
	err      error
	requests int
}

func (p *fakePermission) Query(ctx context.Context) (PermissionState, error) {
	return p.state, nil
}

func (p *fakePermission) Request(ctx context.Context) (PermissionState, error) {
	p.requests++
	if p.err != nil {
		return PermissionPrompt, p.err
	}
	p.state = p.answer
	return p.state, nil
}

type stubPrompter struct {
	answer bool
	err    error
	asked  int
}

func (s *stubPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	s.asked++
	return s.answer, s.err
}

func memFolder(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/docs", 0o755))
	for name, body := range files {
		p := filepath.Join("/docs", name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(body), 0o644))
	}
	return fs
}

func TestResolveWithoutBinding(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(context.Background(), "a.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBinding))

	var re *ResolveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "a.pdf", re.Name)
}

func TestResolveFromFileMap(t *testing.T) {
	fs := memFolder(t, map[string]string{
		"a.pdf":          "alpha",
		"sub/b.PDF":      "beta",
		"notes.txt":      "skip",
		"sub/deep/c.pdf": "gamma",
	})
	m, err := ScanFiles(fs, "/docs", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	r := NewResolver(nil)
	r.Bind(m)

	doc, err := r.Resolve(context.Background(), "b.PDF")
	require.NoError(t, err)
	assert.Equal(t, "b.PDF", doc.Name)
	assert.Empty(t, doc.Path, "in-memory documents have no local path")

	text, err := doc.Excerpt(0)
	require.NoError(t, err)
	assert.Equal(t, "beta", text)

	_, err = r.Resolve(context.Background(), "notes.txt")
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := r.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.PDF", "c.pdf"}, names)
}

func TestResolveFromDirectory(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	perm := &fakePermission{state: PermissionGranted}
	r := NewResolver(nil)
	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", perm))

	doc, err := r.Resolve(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(5), doc.Size)
	assert.Equal(t, 0, perm.requests)

	_, err = r.Resolve(context.Background(), "missing.pdf")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDirectoryRejectsNestedNames(t *testing.T) {
	fs := memFolder(t, map[string]string{"sub/a.pdf": "alpha"})
	b := NewDirectoryBinding(fs, "/docs", ".pdf", &fakePermission{state: PermissionGranted})

	for _, name := range []string{"sub/a.pdf", "..", "", "sub"} {
		_, err := b.Open(context.Background(), name)
		assert.True(t, errors.Is(err, ErrNotFound), name)
	}
}

func TestDirectoryPromptsOnce(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	prompter := &stubPrompter{answer: true}
	perm := NewSessionPermission(fs, "/docs", prompter)
	b := NewDirectoryBinding(fs, "/docs", ".pdf", perm)

	_, err := b.Open(context.Background(), "a.pdf")
	require.NoError(t, err)
	_, err = b.Open(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.asked)

	state, err := perm.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)
}

func TestDirectoryPermissionRefused(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	perm := &fakePermission{state: PermissionPrompt, answer: PermissionDenied}
	b := NewDirectoryBinding(fs, "/docs", ".pdf", perm)

	_, err := b.Open(context.Background(), "a.pdf")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, 1, perm.requests)
}

func TestDirectoryPermissionRevoked(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	perm := NewSessionPermission(fs, "/docs", AutoApprove{})
	r := NewResolver(nil)
	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", perm))

	_, err := r.Resolve(context.Background(), "a.pdf")
	require.NoError(t, err)

	perm.Revoke()
	_, err = r.Resolve(context.Background(), "a.pdf")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.NotEmpty(t, Notice("a.pdf", err))
}

func TestDirectoryPromptCancelled(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	perm := NewSessionPermission(fs, "/docs", &stubPrompter{err: ErrCancelled})
	r := NewResolver(nil)
	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", perm))

	_, err := r.Resolve(context.Background(), "a.pdf")
	assert.True(t, IsCancelled(err))
	assert.Empty(t, Notice("a.pdf", err))

	state, _ := perm.Query(context.Background())
	assert.Equal(t, PermissionPrompt, state, "a dismissed prompt leaves the grant open")
}

func TestStaleDirectory(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	r := NewResolver(nil)
	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", &fakePermission{state: PermissionGranted}))
	require.NoError(t, fs.RemoveAll("/docs"))

	_, err := r.Resolve(context.Background(), "a.pdf")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBindingsAreExclusive(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha"})
	r := NewResolver(nil)

	m, err := ScanFiles(fs, "/docs", ".pdf")
	require.NoError(t, err)
	r.Bind(m)
	assert.Equal(t, ModeFiles, r.Binding().Mode())

	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", &fakePermission{state: PermissionGranted}))
	assert.Equal(t, ModeHandle, r.Binding().Mode())

	r.Unbind()
	assert.Nil(t, r.Binding())
	_, err = r.Resolve(context.Background(), "a.pdf")
	assert.True(t, errors.Is(err, ErrNoBinding))
}

func TestCheckContinuesPastFailures(t *testing.T) {
	fs := memFolder(t, map[string]string{"a.pdf": "alpha", "c.pdf": "gamma"})
	r := NewResolver(nil)
	r.Bind(NewDirectoryBinding(fs, "/docs", ".pdf", &fakePermission{state: PermissionGranted}))

	missing, err := r.Check(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf"})
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "b.pdf", missing[0].Name)
	assert.Equal(t, "d.pdf", missing[1].Name)
}

func TestSelectFiles(t *testing.T) {
	fs := memFolder(t, map[string]string{"x/a.pdf": "alpha", "y/b.pdf": "beta"})
	m, err := SelectFiles(fs, "/docs/x/a.pdf", "/docs/y/b.pdf")
	require.NoError(t, err)

	names, err := m.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, names)

	_, err = SelectFiles(fs, "/docs/nope.pdf")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestScanFilesIndexesSubfolders(t *testing.T) {
	fs := memFolder(t, map[string]string{"2024/despacho.pdf": "d", "notas.txt": "n"})
	m, err := ScanFiles(fs, "/docs", ".pdf")
	require.NoError(t, err)

	r := NewResolver(nil)
	r.Bind(m)
	_, err = r.Resolve(context.Background(), "despacho.pdf")
	require.NoError(t, err)
	assert.True(t, m.Present("despacho.pdf"))
	assert.False(t, m.Present("notas.txt"))
}

func TestExcerptLimit(t *testing.T) {
	fs := memFolder(t, map[string]string{"big.pdf": strings.Repeat("x", ExcerptLimit+50)})
	m, err := ScanFiles(fs, "/docs", ".pdf")
	require.NoError(t, err)

	doc, err := m.Open(context.Background(), "big.pdf")
	require.NoError(t, err)
	text, err := doc.Excerpt(0)
	require.NoError(t, err)
	assert.Len(t, text, ExcerptLimit)
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer

	ok, err := TerminalPrompter{In: strings.NewReader("s\n"), Out: &out}.Confirm(context.Background(), "Abrir?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Abrir? (y/N)")

	ok, err = TerminalPrompter{In: strings.NewReader("\n"), Out: &out}.Confirm(context.Background(), "Abrir?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = TerminalPrompter{In: strings.NewReader(""), Out: &out}.Confirm(context.Background(), "Abrir?")
	assert.True(t, IsCancelled(err))
}

func TestWatcherIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), filepath.Join(dir, "b.txt"), []byte("x"), 0o644))

	w := NewWatcher(dir, nil, nil)
	require.NoError(t, w.Scan())
	assert.True(t, w.Present("a.pdf"))
	assert.False(t, w.Present("b.txt"))
	assert.Equal(t, []string{"a.pdf"}, w.Names())
}

func TestOSDocumentHasPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))

	b, _ := OpenDirectory(dir, ".pdf", AutoApprove{})
	doc, err := b.Open(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), doc.Path)
}
