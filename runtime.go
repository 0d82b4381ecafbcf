// SPDX-License-Identifier: EPL-2.0

package audalg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ik5/audalg/algorithm"
	"github.com/ik5/audalg/audio"
	"github.com/ik5/audalg/config"
	"github.com/ik5/audalg/engine"
	"github.com/ik5/audalg/formats/aiff"
	"github.com/ik5/audalg/formats/mp3"
	"github.com/ik5/audalg/formats/vorbis"
	"github.com/ik5/audalg/formats/wav"
	"github.com/ik5/audalg/frames"
	"github.com/ik5/audalg/schema"
	"github.com/ik5/audalg/storage"
	"github.com/ik5/audalg/value"
)

// SaveBitDepth is the PCM depth Save writes.
const SaveBitDepth = 16

// sniffLen is how many leading bytes Load inspects to pick a decoder.
const sniffLen = 16

var ErrNoConfig = errors.New("audalg: nil config")

// Runtime owns one engine and everything built on it.
type Runtime struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *engine.Engine
	algorithms *algorithm.Registry
	formats    *audio.Registry
	store      *storage.Mux
}

// Option adjusts a Runtime before it is built.
type Option func(*Runtime)

// WithLogger replaces the logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStore routes scheme to s instead of the configured store.
func WithStore(scheme string, s storage.Store) Option {
	return func(r *Runtime) { r.store.Handle(scheme, s) }
}

// New validates cfg and builds the engine, the catalog, the algorithm
// registry, the decoders and the storage routes it describes. ctx bounds
// loading the S3 credentials.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{
		cfg:     cfg,
		logger:  cfg.NewLogger(),
		formats: Formats(),
		store:   storage.NewMux(),
	}

	local, err := storage.NewLocal(cfg.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	r.store.Handle("file", local)

	if cfg.S3Enabled() {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		r.store.Handle("s3", s3)
	}

	for _, opt := range opts {
		opt(r)
	}

	table := schema.Default()
	if cfg.CatalogPath != "" {
		if table, err = schema.LoadFile(cfg.CatalogPath); err != nil {
			return nil, err
		}
	}

	r.engine, err = engine.New(
		engine.WithInitialMemory(cfg.MemoryInitial),
		engine.WithMemoryLimit(cfg.MemoryLimit),
		engine.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	r.algorithms, err = algorithm.NewRegistry(
		algorithm.WithTable(table),
		algorithm.WithEngine(r.engine),
		algorithm.WithLogger(r.logger),
	)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("runtime ready",
		"algorithms", table.Len(),
		"kernels", len(r.engine.Algorithms()),
		"s3", cfg.S3Enabled(),
	)
	return r, nil
}

// Formats returns a registry holding every decoder in formats/.
func Formats() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Extensions("wav", "wav", "wave")
	reg.Magic("wav", []byte("RIFF"))

	reg.Register("aiff", aiff.Decoder{})
	reg.Extensions("aiff", "aiff", "aif")
	reg.Magic("aiff", []byte("FORM"))

	reg.Register("mp3", mp3.Decoder{})
	reg.Extensions("mp3", "mp3")
	reg.Magic("mp3", []byte("ID3"), []byte{0xFF, 0xFB}, []byte{0xFF, 0xF3}, []byte{0xFF, 0xF2})

	reg.Register("vorbis", vorbis.Decoder{})
	reg.Extensions("vorbis", "ogg", "oga")
	reg.Magic("vorbis", []byte("OggS"))

	return reg
}

func (r *Runtime) Config() *config.Config          { return r.cfg }
func (r *Runtime) Logger() *slog.Logger            { return r.logger }
func (r *Runtime) Engine() *engine.Engine          { return r.engine }
func (r *Runtime) Algorithms() *algorithm.Registry { return r.algorithms }
func (r *Runtime) Formats() *audio.Registry        { return r.formats }
func (r *Runtime) Storage() storage.Store          { return r.store }

// Load reads the file at uri and decodes it to a mono signal. The format is
// taken from the leading bytes, then from the extension. When the config
// asks for a sample rate the signal is resampled to it.
func (r *Runtime) Load(ctx context.Context, uri string) (audio.Signal, error) {
	rc, err := r.store.Open(ctx, uri)
	if err != nil {
		return audio.Signal{}, err
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return audio.Signal{}, fmt.Errorf("reading %s: %w", uri, err)
	}

	name, dec, ok := r.formats.Sniff(data[:min(len(data), sniffLen)])
	if !ok {
		name, dec, ok = r.formats.ForPath(uri)
	}
	if !ok {
		return audio.Signal{}, fmt.Errorf("%w: %s", audio.ErrUnknownFormat, uri)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return audio.Signal{}, fmt.Errorf("decoding %s as %s: %w", uri, name, err)
	}
	sig, err := audio.ReadAll(src)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("decoding %s as %s: %w", uri, name, err)
	}

	r.logger.Debug("signal loaded",
		"uri", uri,
		"format", name,
		"rate", sig.SampleRate,
		"samples", sig.Len(),
	)

	if r.cfg.SampleRate > 0 && r.cfg.SampleRate != sig.SampleRate {
		return r.Resample(sig, r.cfg.SampleRate)
	}
	return sig, nil
}

// Resample converts sig to rate with the engine's Resample algorithm.
func (r *Runtime) Resample(sig audio.Signal, rate int) (audio.Signal, error) {
	if rate == sig.SampleRate || sig.Len() == 0 {
		return audio.Signal{SampleRate: rate, Samples: sig.Samples}, nil
	}

	opts := map[string]any{
		"inputSampleRate":  sig.SampleRate,
		"outputSampleRate": rate,
	}
	out := audio.Signal{SampleRate: rate}
	err := r.algorithms.Use("Resample", opts, func(h *algorithm.Handle) error {
		res, err := h.Compute(value.NewRealArray(sig.Samples))
		if err != nil {
			return err
		}
		out.Samples, err = res.Reals("signal")
		return err
	})
	if err != nil {
		return audio.Signal{}, err
	}
	return out, nil
}

// Save writes sig to uri as 16-bit mono WAV.
func (r *Runtime) Save(ctx context.Context, uri string, sig audio.Signal) (err error) {
	tmp, err := os.CreateTemp("", "audalg-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		err = errors.Join(err, tmp.Close(), os.Remove(tmp.Name()))
	}()

	if err := wav.Encode(tmp, sig, SaveBitDepth); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding temp file: %w", err)
	}
	return r.store.Save(ctx, uri, tmp)
}

// Frames cuts sig with the configured frame and hop size.
func (r *Runtime) Frames(sig audio.Signal, opts ...frames.Option) (*frames.Generator, error) {
	return frames.New(sig.Samples, r.cfg.FrameSize, r.cfg.HopSize, opts...)
}

// FrameWise computes c on every frame of sig and passes each result to fn.
// It stops at the first error from c or fn, or when ctx is done.
func (r *Runtime) FrameWise(
	ctx context.Context,
	sig audio.Signal,
	c algorithm.Computer,
	fn func(frames.Frame, algorithm.Result) error,
	opts ...frames.Option,
) error {
	gen, err := r.Frames(sig, opts...)
	if err != nil {
		return err
	}
	stream := algorithm.NewStream(c, gen)
	defer stream.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(stream.Frame(), res); err != nil {
			return err
		}
	}
}

// Close reports handles that were never disposed. The engine itself holds
// no external resources.
func (r *Runtime) Close() error {
	if live := r.algorithms.Live(); live > 0 {
		r.logger.Warn("runtime closed with live handles", "handles", live)
	}
	return nil
}
