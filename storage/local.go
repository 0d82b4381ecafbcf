// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Local serves files below a root directory. Paths may not escape it.
type Local struct {
	root string
}

var _ Store = (*Local)(nil)

// NewLocal uses dir as the root, creating it when missing.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Local{root: dir}, nil
}

func (l *Local) Root() string { return l.root }

func (l *Local) name(uri string) (string, error) {
	scheme, rest, err := split(uri)
	if err != nil {
		return "", err
	}
	if scheme != "file" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	name := path.Clean("/" + filepath.ToSlash(rest))[1:]
	if name == "" {
		return "", fmt.Errorf("%w: %q names no file", ErrInvalidURI, uri)
	}
	return name, nil
}

func (l *Local) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := l.name(uri)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(l.root)
	if err != nil {
		return nil, fmt.Errorf("storage: open root: %w", err)
	}
	defer root.Close()

	f, err := root.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", uri, err)
	}
	return f, nil
}

// Save writes to a temporary file next to the target and renames it into
// place.
func (l *Local) Save(ctx context.Context, uri string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := l.name(uri)
	if err != nil {
		return err
	}

	target := filepath.Join(l.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".save-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: write %s: %w", uri, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: close %s: %w", uri, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: rename %s: %w", uri, err)
	}
	return nil
}
