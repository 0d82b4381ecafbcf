// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1] and
	// returns the number of values written, not frames.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

type format struct {
	name    string
	decoder Decoder
	magic   [][]byte
}

// Registry for decoders by format key (e.g., "wav", "mp3", "vorbis").
type Registry struct {
	mtx     sync.RWMutex
	formats map[string]*format
	exts    map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]*format),
		exts:    make(map[string]string),
	}
}

// Register adds or replaces the decoder for name.
func (r *Registry) Register(name string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if f, ok := r.formats[name]; ok {
		f.decoder = d
		return
	}
	r.formats[name] = &format{name: name, decoder: d}
}

// Extensions maps file extensions, with or without the dot, to name.
func (r *Registry) Extensions(name string, exts ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, ext := range exts {
		r.exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = name
	}
}

// Magic records byte prefixes that identify name.
func (r *Registry) Magic(name string, prefixes ...[]byte) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if f, ok := r.formats[name]; ok {
		f.magic = append(f.magic, prefixes...)
	}
}

func (r *Registry) Get(name string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	f, ok := r.formats[name]
	if !ok {
		return nil, false
	}
	return f.decoder, true
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ForPath picks a decoder from the extension of path.
func (r *Registry) ForPath(path string) (string, Decoder, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	r.mtx.RLock()
	defer r.mtx.RUnlock()

	name, ok := r.exts[ext]
	if !ok {
		return "", nil, false
	}
	f, ok := r.formats[name]
	if !ok {
		return "", nil, false
	}
	return name, f.decoder, true
}

// Sniff picks a decoder from the first bytes of a stream.
func (r *Registry) Sniff(head []byte) (string, Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	for _, name := range slices.Sorted(maps.Keys(r.formats)) {
		f := r.formats[name]
		for _, m := range f.magic {
			if bytes.HasPrefix(head, m) {
				return name, f.decoder, true
			}
		}
	}
	return "", nil, false
}
