// Package loader reads flat float32 array files from an object store into
// matrices of a shape known in advance.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/stat"

	"github.com/kmviz/kmviz/internal/logging"
	"github.com/kmviz/kmviz/internal/metrics"
	"github.com/kmviz/kmviz/internal/vector"
	"github.com/kmviz/kmviz/pkg/objectstore"
)

// Kind labels what a load is for in logs and metrics.
type Kind string

const (
	KindDataset   Kind = "dataset"
	KindCentroids Kind = "centroids"
)

// CompressedSuffix marks keys holding a zstd frame around the raw array.
const CompressedSuffix = ".zst"

// Loader reads arrays from a Store.
type Loader struct {
	store  objectstore.Store
	order  vector.ByteOrder
	logger *logging.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithByteOrder sets the element byte order. The default is native.
func WithByteOrder(order vector.ByteOrder) Option {
	return func(l *Loader) { l.order = order }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader over store.
func New(store objectstore.Store, opts ...Option) *Loader {
	l := &Loader{
		store:  store,
		order:  vector.DefaultByteOrder,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads key as a rows x cols float32 matrix. A missing or unreadable
// object, or one whose length is not exactly rows*cols*4 bytes, returns an
// error matching vector.ErrFileNotFoundOrSizeMismatch.
func (l *Loader) Load(ctx context.Context, kind Kind, key string, rows, cols int) (*vector.Matrix, error) {
	start := time.Now()
	m, n, err := l.load(ctx, key, rows, cols)
	elapsed := time.Since(start)
	metrics.ObserveLoad(string(kind), elapsed.Seconds(), n, err)

	logger := l.logger.WithContext(logging.ContextWithStage(ctx, logging.StageLoad)).With(
		slog.String("kind", string(kind)),
		slog.String("key", key),
		slog.String("shape", vector.FormatShape(rows, cols)),
	)
	if err != nil {
		logger.Error("array load failed", slog.String("error", err.Error()))
		return nil, err
	}

	attrs := []any{
		slog.Int64("bytes", n),
		slog.String("digest", fmt.Sprintf("%016x", m.Digest())),
		slog.Float64("load_ms", float64(elapsed.Microseconds())/1000.0),
	}
	for j := 0; j < m.Cols() && j < 2; j++ {
		attrs = append(attrs, slog.Float64(fmt.Sprintf("mean_%d", j), stat.Mean(m.Column(j), nil)))
	}
	logger.Info("array loaded", attrs...)
	return m, nil
}

func (l *Loader) load(ctx context.Context, key string, rows, cols int) (*vector.Matrix, int64, error) {
	if rows <= 0 || cols <= 0 {
		return nil, 0, fmt.Errorf("%w: (%d, %d)", vector.ErrInvalidShape, rows, cols)
	}
	want := vector.ByteSize(rows, cols)
	compressed := strings.HasSuffix(key, CompressedSuffix)

	info, err := l.store.Head(ctx, key)
	if err != nil {
		return nil, 0, notFound(key, err)
	}
	if !compressed && info.Size != want {
		return nil, 0, &vector.SizeError{Key: key, Rows: rows, Cols: cols, Want: want, Got: info.Size}
	}

	rc, _, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, 0, notFound(key, err)
	}
	defer rc.Close()

	var data []byte
	got := int64(-1)
	switch {
	case compressed:
		data, got, err = readZstd(rc, want)
	default:
		if br, ok := rc.(objectstore.BytesReader); ok {
			data = br.Bytes()
		} else {
			data, got, err = readExact(rc, want)
		}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", vector.ErrFileNotFoundOrSizeMismatch, key, err)
	}
	if got > want {
		return nil, got, &vector.SizeError{Key: key, Rows: rows, Cols: cols, Want: want, Got: got}
	}

	m, err := vector.Decode(key, data, rows, cols, l.order)
	if err != nil {
		return nil, int64(len(data)), err
	}
	return m, int64(len(data)), nil
}

func notFound(key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", vector.ErrFileNotFoundOrSizeMismatch, key, err)
}

// readExact reads at most want bytes. When the stream is longer, the
// surplus is counted but not kept and the returned length reports the total.
func readExact(r io.Reader, want int64) ([]byte, int64, error) {
	data, err := io.ReadAll(io.LimitReader(r, want))
	if err != nil {
		return nil, 0, err
	}
	extra, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, 0, err
	}
	return data, int64(len(data)) + extra, nil
}

func readZstd(r io.Reader, want int64) ([]byte, int64, error) {
	dec, err := zstd.NewReader(r,
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()

	data, n, err := readExact(dec, want)
	if err != nil {
		return nil, 0, fmt.Errorf("zstd: %w", err)
	}
	return data, n, nil
}
