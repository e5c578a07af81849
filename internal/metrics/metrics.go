// Package metrics provides Prometheus metrics for kmviz runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kmviz"

var (
	// LoadsTotal tracks array file loads.
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total array file loads",
		},
		[]string{"kind", "status"}, // kind: dataset/centroids, status: success/error
	)

	// BytesRead tracks raw bytes read from array files.
	BytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Total bytes read from array files",
		},
	)

	// LoadLatency tracks array load latency.
	LoadLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_latency_seconds",
			Help:      "Array load latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// RenderTotal tracks plot renders per sink.
	RenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_total",
			Help:      "Total plot renders",
		},
		[]string{"sink", "status"}, // sink: window/file/serve
	)

	// RenderLatency tracks how long a sink took, including time spent
	// waiting on an interactive viewer.
	RenderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_latency_seconds",
			Help:      "Plot render latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"sink"},
	)

	// PointsOutside tracks plotted points that fall outside the axis limits.
	PointsOutside = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "points_outside_axes",
			Help:      "Points outside the fixed axis limits in the last render",
		},
		[]string{"series"},
	)

	// CacheLookups tracks local disk cache lookups for remote objects.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total disk cache lookups",
		},
		[]string{"result"}, // hit/miss
	)

	// CacheBytes tracks bytes held by the disk cache.
	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_bytes",
			Help:      "Bytes currently held by the disk cache",
		},
	)

	// ObjectStoreOps tracks object store operations.
	ObjectStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objectstore_ops_total",
			Help:      "Total object store operations",
		},
		[]string{"operation", "status"}, // operation: get/head, status: success/error
	)

	// ObjectStoreLatency tracks object store operation latency.
	ObjectStoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "objectstore_latency_seconds",
			Help:      "Object store operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveLoad records one array load.
func ObserveLoad(kind string, latencySeconds float64, bytesRead int64, err error) {
	LoadsTotal.WithLabelValues(kind, status(err)).Inc()
	LoadLatency.WithLabelValues(kind).Observe(latencySeconds)
	if bytesRead > 0 {
		BytesRead.Add(float64(bytesRead))
	}
}

// ObserveRender records one plot render.
func ObserveRender(sink string, latencySeconds float64, err error) {
	RenderTotal.WithLabelValues(sink, status(err)).Inc()
	RenderLatency.WithLabelValues(sink).Observe(latencySeconds)
}

// SetPointsOutside sets the out-of-bounds point count for a series.
func SetPointsOutside(series string, n int) {
	PointsOutside.WithLabelValues(series).Set(float64(n))
}

// ObserveCacheLookup records a disk cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// SetCacheBytes sets the disk cache usage.
func SetCacheBytes(n int64) {
	CacheBytes.Set(float64(n))
}

// ObserveObjectStoreOp records an object store operation.
func ObserveObjectStoreOp(operation string, latencySeconds float64, err error) {
	ObjectStoreOps.WithLabelValues(operation, status(err)).Inc()
	ObjectStoreLatency.WithLabelValues(operation).Observe(latencySeconds)
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
