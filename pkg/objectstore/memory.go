package objectstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*memoryObject
}

type memoryObject struct {
	data         []byte
	etag         string
	lastModified time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*memoryObject),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return &memoryReadCloser{Reader: bytes.NewReader(obj.data), data: obj.data}, obj.info(key), nil
}

func (s *MemoryStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return obj.info(key), nil
}

// Put stores a copy of data under key, replacing any previous object.
func (s *MemoryStore) Put(key string, data []byte) *ObjectInfo {
	owned := make([]byte, len(data))
	copy(owned, data)
	sum := sha256.Sum256(owned)

	obj := &memoryObject{
		data:         owned,
		etag:         hex.EncodeToString(sum[:16]),
		lastModified: time.Now(),
	}

	s.mu.Lock()
	s.objects[key] = obj
	s.mu.Unlock()
	return obj.info(key)
}

func (o *memoryObject) info(key string) *ObjectInfo {
	return &ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		ETag:         o.etag,
		LastModified: o.lastModified,
		ContentType:  "application/octet-stream",
	}
}

type memoryReadCloser struct {
	*bytes.Reader
	data []byte
}

func (r *memoryReadCloser) Bytes() []byte { return r.data }

func (r *memoryReadCloser) Close() error { return nil }
