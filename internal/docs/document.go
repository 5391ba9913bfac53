package docs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ExcerptLimit bounds the text excerpt read from a document.
const ExcerptLimit = 10000

// Document is a materialized file from a binding.
type Document struct {
	Name    string
	Size    int64
	ModTime time.Time
	// Path is the local filesystem path, empty when the file only exists
	// inside an in-memory filesystem.
	Path string

	fs     afero.Fs
	fsPath string
}

func newDocument(fs afero.Fs, fsPath string, info os.FileInfo) *Document {
	d := &Document{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		fs:      fs,
		fsPath:  fsPath,
	}
	if _, ok := fs.(*afero.OsFs); ok {
		if abs, err := filepath.Abs(fsPath); err == nil {
			d.Path = abs
		} else {
			d.Path = fsPath
		}
	}
	return d
}

// Open returns a reader over the document contents.
func (d *Document) Open() (io.ReadCloser, error) {
	return d.fs.Open(d.fsPath)
}

// Excerpt reads up to limit bytes and returns them as text. No format
// parsing happens here: binary content comes back as replacement characters.
func (d *Document) Excerpt(limit int) (string, error) {
	if limit <= 0 {
		limit = ExcerptLimit
	}
	f, err := d.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, int64(limit)))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(buf), "�"), nil
}
