// Package file provides the local-filesystem data source used by the
// ingest stage. It exists so the pipeline opens inputs through one seam,
// which keeps path handling and error wrapping in a single place.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local reads a single file from the local filesystem.
type Local struct {
	path string
}

// NewLocal returns a data source for the given path. The path is not
// checked until Open.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Path returns the configured location.
func (l *Local) Path() string { return l.path }

// Open opens the underlying file. The caller owns the returned reader and
// must close it. Wrapped errors preserve os.ErrNotExist for errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %s: %w", l.path, err)
	}
	return f, nil
}
