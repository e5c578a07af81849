package cache

import (
	"context"
	"errors"
	"io"

	"github.com/kmviz/kmviz/pkg/objectstore"
)

// Store serves objects from a DiskCache, filling it from inner on a miss.
// Objects without an etag bypass the cache.
type Store struct {
	inner objectstore.Store
	disk  *DiskCache
	local *objectstore.FSStore
}

// NewStore wraps inner with disk.
func NewStore(inner objectstore.Store, disk *DiskCache) (*Store, error) {
	local, err := objectstore.NewFSStore(disk.root)
	if err != nil {
		return nil, err
	}
	return &Store{inner: inner, disk: disk, local: local}, nil
}

func (s *Store) Head(ctx context.Context, key string) (*objectstore.ObjectInfo, error) {
	return s.inner.Head(ctx, key)
}

// Get returns a mapped reader over the cached copy.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, *objectstore.ObjectInfo, error) {
	info, err := s.inner.Head(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if info.ETag == "" {
		return s.inner.Get(ctx, key)
	}

	path, err := s.disk.Get(Key{ObjectKey: key, ETag: info.ETag})
	if errors.Is(err, ErrCacheMiss) {
		path, info, err = s.fill(ctx, key)
		if errors.Is(err, ErrCacheFull) {
			return s.inner.Get(ctx, key)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := s.local.Get(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return rc, info, nil
}

// fill caches the object under the etag reported by Get, which wins over
// Head if the object changed in between.
func (s *Store) fill(ctx context.Context, key string) (string, *objectstore.ObjectInfo, error) {
	rc, info, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	path, err := s.disk.Put(Key{ObjectKey: key, ETag: info.ETag}, rc, info.Size)
	return path, info, err
}
