// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, s Store, uri string) string {
	t.Helper()

	rc, err := s.Open(context.Background(), uri)
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestLocalSaveAndOpen(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Save(ctx, "clips/a.wav", strings.NewReader("RIFF")))
	assert.Equal(t, "RIFF", read(t, l, "clips/a.wav"))
	assert.Equal(t, "RIFF", read(t, l, "file://clips/a.wav"))

	require.NoError(t, l.Save(ctx, "clips/a.wav", strings.NewReader("replaced")))
	assert.Equal(t, "replaced", read(t, l, "clips/a.wav"))

	entries, err := os.ReadDir(filepath.Join(l.Root(), "clips"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestLocalStaysInsideRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	l, err := NewLocal(root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret"), []byte("x"), 0o600))

	require.NoError(t, l.Save(context.Background(), "../../escape.txt", strings.NewReader("in")))
	assert.FileExists(t, filepath.Join(root, "escape.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))

	_, err = l.Open(context.Background(), "../secret")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalErrors(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = l.Open(ctx, "missing.wav")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = l.Open(ctx, "")
	require.ErrorIs(t, err, ErrInvalidURI)

	_, err = l.Open(ctx, "s3://bucket/key")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Open(cancelled, "a.wav")
	require.ErrorIs(t, err, context.Canceled)
}

func TestMuxRouting(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	m := NewMux()
	m.Handle("file", l)
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, "a.txt", strings.NewReader("local")))
	assert.Equal(t, "local", read(t, m, "FILE://a.txt"))

	_, err = m.Open(ctx, "s3://bucket/key")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = m.Open(ctx, "ftp://host/a")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestParseS3(t *testing.T) {
	t.Parallel()

	bucket, key, err := parseS3("s3://audio/clips/a.wav")
	require.NoError(t, err)
	assert.Equal(t, "audio", bucket)
	assert.Equal(t, "clips/a.wav", key)

	for _, bad := range []string{"s3://audio", "s3:///key", "http://audio/key", "s3://%zz/k"} {
		_, _, err := parseS3(bad)
		require.ErrorIs(t, err, ErrInvalidURI, bad)
	}
}

// fakeS3 is a path-style object server.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		f.objects[r.URL.Path] = b
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		b, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(b)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{objects: make(map[string][]byte)}
	server := httptest.NewServer(fake)
	defer server.Close()

	ctx := context.Background()
	s, err := NewS3(ctx, S3Config{
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "s3://audio/clips/a.wav", strings.NewReader("payload")))

	fake.mu.Lock()
	assert.Equal(t, []byte("payload"), fake.objects["/audio/clips/a.wav"])
	fake.mu.Unlock()

	assert.Equal(t, "payload", read(t, s, "s3://audio/clips/a.wav"))

	_, err = s.Open(ctx, "s3://audio/missing.wav")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Open(ctx, "s3://audio")
	require.ErrorIs(t, err, ErrInvalidURI)

	m := NewMux()
	m.Handle("s3", s)
	assert.Equal(t, "payload", read(t, m, "s3://audio/clips/a.wav"))
}
