// Package backup reads and writes the standalone JSON backup file. The file
// carries the same shape as the local snapshot slot.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/gestorjudicial/gestor/internal/model"
)

// DefaultFileName is the name offered for exported backups.
const DefaultFileName = "backup_judicial.json"

// ErrMalformedBackup is returned when a backup cannot be parsed. The caller's
// state is never touched in that case.
var ErrMalformedBackup = errors.New("erro ao carregar ficheiro JSON")

// Write encodes snap with two-space indentation.
func Write(w io.Writer, snap model.Snapshot) error {
	data, err := snap.EncodeIndent()
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes snap to path, creating parent directories. When path is a
// directory the default file name is used inside it. It returns the path written.
func WriteFile(fs afero.Fs, path string, snap model.Snapshot) (string, error) {
	if path == "" {
		path = DefaultFileName
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		path = filepath.Join(path, DefaultFileName)
	} else if info, err := fs.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create backup directory %s: %w", dir, err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		return "", err
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

// Read decodes a backup. Legacy list shapes are normalized on the way in.
func Read(r io.Reader) (model.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("read backup: %w", err)
	}
	snap, err := model.DecodeSnapshot(data)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	return snap, nil
}

// ReadFile decodes the backup stored at path.
func ReadFile(fs afero.Fs, path string) (model.Snapshot, error) {
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Snapshot{}, fmt.Errorf("backup %s: %w", path, err)
		}
		return model.Snapshot{}, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()
	return Read(f)
}
