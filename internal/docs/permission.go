package docs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// PermissionState mirrors the three states of a directory grant.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// Permission gates access to a bound directory.
type Permission interface {
	// Query returns the current state without prompting.
	Query(ctx context.Context) (PermissionState, error)
	// Request asks the user when needed. It blocks until the user answers;
	// a dismissed prompt returns ErrCancelled.
	Request(ctx context.Context) (PermissionState, error)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// SessionPermission grants access for the lifetime of one session. It starts
// in the prompt state, so every new session must re-grant.
type SessionPermission struct {
	fs       afero.Fs
	root     string
	prompter Prompter

	mu      sync.Mutex
	granted bool
	denied  bool
}

// NewSessionPermission builds a permission for root on fs. A nil prompter
// refuses every request.
func NewSessionPermission(fs afero.Fs, root string, prompter Prompter) *SessionPermission {
	return &SessionPermission{fs: fs, root: root, prompter: prompter}
}

func (p *SessionPermission) Query(ctx context.Context) (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queryLocked(), nil
}

func (p *SessionPermission) queryLocked() PermissionState {
	if p.denied {
		return PermissionDenied
	}
	if _, err := p.fs.Stat(p.root); err != nil && errors.Is(err, os.ErrPermission) {
		return PermissionDenied
	}
	if p.granted {
		return PermissionGranted
	}
	return PermissionPrompt
}

func (p *SessionPermission) Request(ctx context.Context) (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.queryLocked()
	if state != PermissionPrompt {
		return state, nil
	}
	if p.prompter == nil {
		p.denied = true
		return PermissionDenied, nil
	}
	ok, err := p.prompter.Confirm(ctx, fmt.Sprintf("Permitir acesso à pasta %s?", p.root))
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			return PermissionPrompt, ErrCancelled
		}
		return PermissionPrompt, err
	}
	if !ok {
		p.denied = true
		return PermissionDenied, nil
	}
	p.granted = true
	return PermissionGranted, nil
}

// Revoke withdraws a grant. Later queries report denied until the folder is
// bound again.
func (p *SessionPermission) Revoke() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = false
	p.denied = true
}

// TerminalPrompter asks on a terminal and reads a y/N answer.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (t TerminalPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrCancelled
	}
	fmt.Fprintf(t.Out, "%s (y/N): ", question)

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return false, err
		}
		if strings.TrimSpace(line) == "" {
			return false, ErrCancelled
		}
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}

// AutoApprove answers yes to every question (used with --yes).
type AutoApprove struct{}

func (AutoApprove) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrCancelled
	}
	return true, nil
}
