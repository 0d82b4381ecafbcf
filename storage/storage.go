// SPDX-License-Identifier: EPL-2.0

// Package storage opens and saves signal files by URI. Plain paths and
// file:// URIs resolve under a local root directory; s3://bucket/key URIs go
// to an S3 compatible service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

var (
	ErrNotFound          = errors.New("storage: object not found")
	ErrInvalidURI        = errors.New("storage: invalid uri")
	ErrUnsupportedScheme = errors.New("storage: unsupported scheme")
	ErrNotConfigured     = errors.New("storage: s3 is not configured")
)

// Store reads and writes whole objects.
type Store interface {
	// Open returns the object at uri. The caller closes it.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	// Save replaces the object at uri with the contents of r.
	Save(ctx context.Context, uri string, r io.Reader) error
}

// Mux routes a URI to the store registered for its scheme. A URI without a
// scheme uses the "file" store.
type Mux struct {
	mu     sync.RWMutex
	stores map[string]Store
}

var _ Store = (*Mux)(nil)

func NewMux() *Mux {
	return &Mux{stores: make(map[string]Store)}
}

func (m *Mux) Handle(scheme string, s Store) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stores[strings.ToLower(scheme)] = s
}

func (m *Mux) route(uri string) (Store, error) {
	scheme, _, err := split(uri)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stores[scheme]
	if !ok {
		if scheme == "s3" {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	return s, nil
}

func (m *Mux) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	s, err := m.route(uri)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, uri)
}

func (m *Mux) Save(ctx context.Context, uri string, r io.Reader) error {
	s, err := m.route(uri)
	if err != nil {
		return err
	}
	return s.Save(ctx, uri, r)
}

// split returns the lower-cased scheme and the remainder of uri. Plain paths
// have scheme "file".
func split(uri string) (scheme, rest string, err error) {
	if uri == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidURI)
	}
	i := strings.Index(uri, "://")
	if i < 0 {
		return "file", uri, nil
	}
	return strings.ToLower(uri[:i]), uri[i+3:], nil
}

// parseS3 splits s3://bucket/key.
func parseS3(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%w: %q is not an s3 uri", ErrInvalidURI, uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q needs a bucket and a key", ErrInvalidURI, uri)
	}
	return u.Host, key, nil
}
