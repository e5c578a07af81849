package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLoad(t *testing.T) {
	LoadsTotal.Reset()
	before := testutil.ToFloat64(BytesRead)

	ObserveLoad("dataset", 0.01, 800, nil)
	ObserveLoad("centroids", 0.01, 0, errors.New("missing"))

	if got := testutil.ToFloat64(LoadsTotal.WithLabelValues("dataset", "success")); got != 1 {
		t.Errorf("expected 1 dataset success, got %f", got)
	}
	if got := testutil.ToFloat64(LoadsTotal.WithLabelValues("centroids", "error")); got != 1 {
		t.Errorf("expected 1 centroids error, got %f", got)
	}
	if got := testutil.ToFloat64(BytesRead) - before; got != 800 {
		t.Errorf("expected 800 bytes read, got %f", got)
	}
}

func TestObserveRender(t *testing.T) {
	RenderTotal.Reset()

	ObserveRender("file", 0.2, nil)
	ObserveRender("file", 0.1, nil)
	ObserveRender("window", 0, errors.New("no display"))

	if got := testutil.ToFloat64(RenderTotal.WithLabelValues("file", "success")); got != 2 {
		t.Errorf("expected 2 file renders, got %f", got)
	}
	if got := testutil.ToFloat64(RenderTotal.WithLabelValues("window", "error")); got != 1 {
		t.Errorf("expected 1 window error, got %f", got)
	}
}

func TestObserveCacheLookup(t *testing.T) {
	CacheLookups.Reset()

	ObserveCacheLookup(false)
	ObserveCacheLookup(true)
	ObserveCacheLookup(true)
	SetCacheBytes(840)

	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %f", got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %f", got)
	}
	if got := testutil.ToFloat64(CacheBytes); got != 840 {
		t.Errorf("expected 840 cache bytes, got %f", got)
	}
}

func TestObserveObjectStoreOp(t *testing.T) {
	ObjectStoreOps.Reset()

	ObserveObjectStoreOp("head", 0.001, nil)
	ObserveObjectStoreOp("get", 0.002, errors.New("boom"))

	if got := testutil.ToFloat64(ObjectStoreOps.WithLabelValues("head", "success")); got != 1 {
		t.Errorf("expected 1 head success, got %f", got)
	}
	if got := testutil.ToFloat64(ObjectStoreOps.WithLabelValues("get", "error")); got != 1 {
		t.Errorf("expected 1 get error, got %f", got)
	}
}

func TestSetPointsOutside(t *testing.T) {
	SetPointsOutside("data", 3)
	if got := testutil.ToFloat64(PointsOutside.WithLabelValues("data")); got != 3 {
		t.Errorf("expected 3, got %f", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	ObserveLoad("dataset", 0.01, 8, nil)

	path := filepath.Join(t.TempDir(), "kmviz.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "kmviz_loads_total") {
		t.Errorf("textfile missing kmviz_loads_total:\n%s", data)
	}
}
