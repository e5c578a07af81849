// Package objectstore provides read access to the blobs that hold array files:
// a local directory, process memory, or an S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrUnknownType   = errors.New("unknown object store type")
	ErrInvalidConfig = errors.New("invalid object store config")
)

const (
	TypeFile   = "file"
	TypeMemory = "memory"
	TypeS3     = "s3"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
	ContentType  string
}

// Store is the read side of a blob source.
type Store interface {
	Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
}

// BytesReader is implemented by readers that already hold the whole object
// in memory. Callers may use Bytes instead of copying through Read; the slice
// is valid until Close.
type BytesReader interface {
	Bytes() []byte
}

type Config struct {
	Type      string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	RootPath  string
}

// New builds a store from cfg and wraps it with metrics.
func New(cfg Config) (Store, error) {
	var inner Store
	switch cfg.Type {
	case TypeFile, "":
		root := cfg.RootPath
		if root == "" {
			root = "."
		}
		s, err := NewFSStore(root)
		if err != nil {
			return nil, err
		}
		inner = s
	case TypeMemory:
		inner = NewMemoryStore()
	case TypeS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("%w: s3 store requires a bucket", ErrInvalidConfig)
		}
		s, err := NewS3Store(S3Config{
			Endpoint:  cfg.Endpoint,
			Bucket:    cfg.Bucket,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		inner = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
	return NewInstrumentedStore(inner), nil
}
