package docs

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Viewer hands a resolved document to the platform's default application.
type Viewer struct {
	// Command overrides the launcher, e.g. "evince" or "zathura --fork".
	Command string
}

func (v Viewer) command() []string {
	if c := strings.Fields(v.Command); len(c) > 0 {
		return c
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	}
	return []string{"xdg-open"}
}

// Launch opens doc in the external viewer without waiting for it to exit.
// Documents without a local path are copied to a temporary file first.
func (v Viewer) Launch(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return ErrCancelled
	}
	path := doc.Path
	if path == "" {
		tmp, err := materialize(doc)
		if err != nil {
			return err
		}
		path = tmp
	}
	args := v.command()
	cmd := exec.Command(args[0], append(args[1:], path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch viewer: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func materialize(doc *Document) (string, error) {
	src, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "gestor-*-"+doc.Name)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return dst.Name(), nil
}
