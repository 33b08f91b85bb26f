// Package artifact retrieves the per-band model and feature-metadata
// blobs the registries load at startup. Three backends are provided: a
// local directory, an HTTP artifact server, and a bbolt fetch-through
// cache wrapping the HTTP backend.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store retrieves artifact bytes by name. Implementations must be safe
// for concurrent use.
type Store interface {
	// Metadata returns the named feature-metadata document.
	Metadata(ctx context.Context, name string) ([]byte, error)
	// Model returns the named serialized model blob.
	Model(ctx context.Context, name string) ([]byte, error)
}

// Dir serves artifacts from a local directory, the layout the training
// pipeline exports into.
type Dir struct {
	root string
}

// NewDir returns a Store reading from the given directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Metadata(_ context.Context, name string) ([]byte, error) { return d.read(name) }

func (d *Dir) Model(_ context.Context, name string) ([]byte, error) { return d.read(name) }

func (d *Dir) read(name string) ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	return raw, nil
}
