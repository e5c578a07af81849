package cache

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kmviz/kmviz/internal/metrics"
	"github.com/kmviz/kmviz/pkg/objectstore"
)

func newTestStore(t *testing.T, maxBytes int64) (*Store, *objectstore.MemoryStore, *DiskCache) {
	t.Helper()
	inner := objectstore.NewMemoryStore()
	dc := newTestCache(t, maxBytes)
	s, err := NewStore(inner, dc)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s, inner, dc
}

func readAll(t *testing.T, s objectstore.Store, key string) ([]byte, io.ReadCloser) {
	t.Helper()
	rc, _, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get %s failed: %v", key, err)
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s failed: %v", key, err)
	}
	return data, rc
}

func TestStore_FillThenHit(t *testing.T) {
	s, inner, dc := newTestStore(t, 1024)
	inner.Put("X_data.bin", []byte("0123456789abcdef"))

	hits := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit"))

	data, rc := readAll(t, s, "X_data.bin")
	rc.Close()
	if string(data) != "0123456789abcdef" {
		t.Errorf("first read = %q", data)
	}
	if dc.Stats().EntryCount != 1 {
		t.Fatalf("expected object to be cached")
	}

	data, rc = readAll(t, s, "X_data.bin")
	defer rc.Close()
	if string(data) != "0123456789abcdef" {
		t.Errorf("second read = %q", data)
	}
	if _, ok := rc.(objectstore.BytesReader); !ok {
		t.Error("cached reader should expose mapped bytes")
	}
	if got := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("expected 1 cache hit, got %f", got)
	}
}

func TestStore_NewETagRefetches(t *testing.T) {
	s, inner, dc := newTestStore(t, 1024)

	inner.Put("c.bin", []byte("first"))
	_, rc := readAll(t, s, "c.bin")
	rc.Close()

	inner.Put("c.bin", []byte("second"))
	data, rc := readAll(t, s, "c.bin")
	rc.Close()

	if string(data) != "second" {
		t.Errorf("expected updated content, got %q", data)
	}
	if dc.Stats().EntryCount != 2 {
		t.Errorf("expected both versions cached, got %d", dc.Stats().EntryCount)
	}
}

func TestStore_TooLargeBypassesCache(t *testing.T) {
	s, inner, dc := newTestStore(t, 4)
	inner.Put("big.bin", []byte("larger than budget"))

	data, rc := readAll(t, s, "big.bin")
	rc.Close()
	if string(data) != "larger than budget" {
		t.Errorf("read = %q", data)
	}
	if dc.Stats().EntryCount != 0 {
		t.Error("oversized object should not be cached")
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _, _ := newTestStore(t, 1024)

	_, _, err := s.Get(context.Background(), "missing.bin")
	if !errors.Is(err, objectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(context.Background(), "missing.bin"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound from Head, got %v", err)
	}
}
