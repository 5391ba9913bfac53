package docs

import (
	"errors"
	"fmt"
)

// Binding failures. All of them are recoverable: the caller reports the
// problem and carries on with the rest of its work.
var (
	// ErrNoBinding means no folder or file set is bound; the user should bind one.
	ErrNoBinding = errors.New("no document folder bound")
	// ErrPermissionDenied means access to the bound folder was refused or revoked.
	ErrPermissionDenied = errors.New("permission to the bound folder denied")
	// ErrNotFound means the binding exists but has no file with that exact name.
	ErrNotFound = errors.New("file not found in bound folder")
	// ErrCancelled means the user dismissed a prompt. Callers treat it as a no-op.
	ErrCancelled = errors.New("cancelled by user")
)

// ResolveError ties a binding failure to the requested file name.
type ResolveError struct {
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Notice turns a resolve failure into the message shown to the user.
// Cancellations yield an empty notice.
func Notice(name string, err error) string {
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return ""
	case errors.Is(err, ErrNoBinding):
		return "Associe a pasta mãe novamente para abrir os documentos."
	case errors.Is(err, ErrPermissionDenied):
		return fmt.Sprintf("Sem permissão para abrir %q. Volte a autorizar o acesso à pasta mãe.", name)
	}
	return fmt.Sprintf("Erro ao abrir %q. Verifique a pasta mãe.", name)
}
