package docs

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Resolver holds the session's single document binding and resolves logical
// file names through it. Binding a directory discards a file map and vice
// versa.
type Resolver struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	binding Binding
}

// NewResolver returns a resolver with no binding.
func NewResolver(logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{log: logger}
}

// Bind replaces the current binding.
func (r *Resolver) Bind(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binding = b
	if b != nil {
		r.log.Infow("documents bound", "mode", b.Mode(), "source", b.Describe())
	}
}

// Unbind drops the current binding.
func (r *Resolver) Unbind() {
	r.Bind(nil)
}

// Binding returns the active binding, or nil.
func (r *Resolver) Binding() Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.binding
}

// Resolve maps a logical file name to a document. Failures come back as
// *ResolveError wrapping one of the package sentinels.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Document, error) {
	b := r.Binding()
	if b == nil {
		return nil, &ResolveError{Name: name, Err: ErrNoBinding}
	}
	doc, err := b.Open(ctx, name)
	if err != nil {
		if !IsCancelled(err) {
			r.log.Warnw("document resolve failed", "name", name, "mode", b.Mode(), "error", err)
		}
		return nil, &ResolveError{Name: name, Err: err}
	}
	return doc, nil
}

// Names lists the documents available through the active binding.
func (r *Resolver) Names(ctx context.Context) ([]string, error) {
	b := r.Binding()
	if b == nil {
		return nil, ErrNoBinding
	}
	return b.Names(ctx)
}

// Missing pairs an unresolvable name with its failure.
type Missing struct {
	Name string
	Err  error
}

// Check resolves each name and returns the ones that fail. A failing name
// never stops the rest of the list; a cancellation or a missing binding does,
// since every later name would fail the same way.
func (r *Resolver) Check(ctx context.Context, names []string) ([]Missing, error) {
	var out []Missing
	for _, name := range names {
		if _, err := r.Resolve(ctx, name); err != nil {
			if IsCancelled(err) || errors.Is(err, ErrNoBinding) {
				return out, err
			}
			out = append(out, Missing{Name: name, Err: err})
		}
	}
	return out, nil
}
