package docs

import "context"

// Mode identifies the binding variant.
type Mode string

const (
	// ModeHandle is a live handle to a directory, gated by a permission.
	ModeHandle Mode = "handle"
	// ModeFiles is a one-time selection of files captured into a name map.
	ModeFiles Mode = "files"
)

// Binding resolves logical file names to documents. The two variants differ
// only in how they reach the files; callers never branch on the variant.
type Binding interface {
	Mode() Mode
	// Describe returns a short human label, e.g. the folder path.
	Describe() string
	// Open resolves an exact file name.
	Open(ctx context.Context, name string) (*Document, error)
	// Names lists the documents reachable through the binding.
	Names(ctx context.Context) ([]string, error)
}
