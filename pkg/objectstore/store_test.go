package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	store.Put("X_data.bin", []byte("0123456789abcdef"))
	store.Put("nested/centroid_data.bin", []byte("01234567"))
	runStoreTests(t, store)
}

func TestFSStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "X_data.bin"), []byte("0123456789abcdef"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "centroid_data.bin"), []byte("01234567"), 0o644))

	store, err := NewFSStore(root)
	require.NoError(t, err)
	runStoreTests(t, store)
}

func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("head reports size", func(t *testing.T) {
		info, err := store.Head(ctx, "X_data.bin")
		require.NoError(t, err)
		assert.Equal(t, int64(16), info.Size)
		assert.Equal(t, "X_data.bin", info.Key)
	})

	t.Run("get reads whole object", func(t *testing.T) {
		rc, info, err := store.Get(ctx, "nested/centroid_data.bin")
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "01234567", string(data))
		assert.Equal(t, int64(8), info.Size)
	})

	t.Run("get exposes bytes", func(t *testing.T) {
		rc, _, err := store.Get(ctx, "X_data.bin")
		require.NoError(t, err)
		defer rc.Close()

		br, ok := rc.(BytesReader)
		require.True(t, ok, "%T does not implement BytesReader", rc)
		assert.Equal(t, "0123456789abcdef", string(br.Bytes()))
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Head(ctx, "missing.bin")
		assert.True(t, errors.Is(err, ErrNotFound), "head: %v", err)

		_, _, err = store.Get(ctx, "missing.bin")
		assert.True(t, errors.Is(err, ErrNotFound), "get: %v", err)
	})
}

func TestFSStore_AbsoluteKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abs.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	info, err := store.Head(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size)
}

func TestFSStore_DirectoryIsNotAnObject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir"), 0o755))

	store, err := NewFSStore(root)
	require.NoError(t, err)

	_, err = store.Head(context.Background(), "dir")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_RootMustExist(t *testing.T) {
	_, err := NewFSStore(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMemoryStore_PutCopies(t *testing.T) {
	store := NewMemoryStore()
	data := []byte{1, 2, 3, 4}
	store.Put("k", data)
	data[0] = 9

	rc, _, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestNew(t *testing.T) {
	s, err := New(Config{Type: TypeMemory})
	require.NoError(t, err)
	_, ok := s.(*InstrumentedStore).inner.(*MemoryStore)
	assert.True(t, ok)

	s, err = New(Config{Type: TypeFile, RootPath: t.TempDir()})
	require.NoError(t, err)
	_, ok = s.(*InstrumentedStore).inner.(*FSStore)
	assert.True(t, ok)

	_, err = New(Config{Type: "ftp"})
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = New(Config{Type: TypeS3})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
