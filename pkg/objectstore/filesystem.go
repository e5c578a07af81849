package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kmviz/kmviz/internal/mmap"
)

// FSStore reads objects as plain files below a root directory.
// Absolute keys bypass the root.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: root %s is not a directory", ErrInvalidConfig, root)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) objectPath(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get maps the file read-only. The returned reader implements BytesReader.
func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	info, err := s.Head(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	m, err := mmap.Open(s.objectPath(key))
	if err != nil {
		return nil, nil, mapFSError(err)
	}

	return &mappedReadCloser{
		SectionReader: io.NewSectionReader(m, 0, int64(m.Size())),
		m:             m,
	}, info, nil
}

func (s *FSStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	fi, err := os.Stat(s.objectPath(key))
	if err != nil {
		return nil, mapFSError(err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, key)
	}
	return &ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
		ContentType:  "application/octet-stream",
	}, nil
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

type mappedReadCloser struct {
	*io.SectionReader
	m *mmap.Mapping
}

func (r *mappedReadCloser) Bytes() []byte {
	return r.m.Bytes()
}

func (r *mappedReadCloser) Close() error {
	return r.m.Close()
}
