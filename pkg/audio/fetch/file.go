// ABOUTME: Filesystem fetcher for local audio assets
// ABOUTME: Reads files confined to an asset root directory
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// ErrOutsideRoot is returned for sources that would escape File.Root
var ErrOutsideRoot = errors.New("path outside asset root")

// File reads sources from the local filesystem.
// When Root is set, sources must be relative paths inside it; absolute
// paths, ".." escapes and symlinks leaving the root are rejected.
// An empty Root reads any path.
type File struct {
	Root string
}

// Fetch reads the whole file
func (f *File) Fetch(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}

	if f.Root == "" {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fileError(source, err)
		}
		return data, nil
	}

	name := filepath.Clean(filepath.FromSlash(source))
	if !filepath.IsLocal(name) {
		return nil, &NetworkError{Source: source, Status: http.StatusForbidden, Err: ErrOutsideRoot}
	}

	root, err := os.OpenRoot(f.Root)
	if err != nil {
		return nil, fileError(source, fmt.Errorf("failed to open asset root: %w", err))
	}
	defer root.Close()

	file, err := root.Open(name)
	if err != nil {
		return nil, fileError(source, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fileError(source, err)
	}
	return data, nil
}

// fileError maps a filesystem failure to the closest HTTP status
func fileError(source string, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		status = http.StatusForbidden
	}
	return &NetworkError{Source: source, Status: status, Err: err}
}
