// Package cache keeps local copies of remote array objects so repeat runs
// read a mapped file instead of downloading again.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kmviz/kmviz/internal/metrics"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheFull = errors.New("cache full")
)

// Key is content-addressable: the same object key with a new etag is a
// different entry.
type Key struct {
	ObjectKey string
	ETag      string
}

const (
	metadataSuffix = ".meta"
	tempPrefix     = ".tmp-"
)

func (k Key) hash() string {
	h := sha256.New()
	h.Write([]byte(k.ObjectKey))
	h.Write([]byte("|"))
	h.Write([]byte(k.ETag))
	return hex.EncodeToString(h.Sum(nil))
}

type metadata struct {
	ObjectKey string `json:"object_key"`
	ETag      string `json:"etag"`
}

func metadataPath(root, hash string) string {
	return filepath.Join(root, hash+metadataSuffix)
}

func writeMetadata(path string, key Key) error {
	payload, err := json.Marshal(metadata{ObjectKey: key.ObjectKey, ETag: key.ETag})
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func readMetadata(path string) (Key, bool) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Key{}, false
	}
	var m metadata
	if err := json.Unmarshal(payload, &m); err != nil {
		return Key{}, false
	}
	return Key{ObjectKey: m.ObjectKey, ETag: m.ETag}, true
}

type entry struct {
	key     Key
	hash    string
	path    string
	size    int64
	element *list.Element
}

// DiskCache is a directory of cached objects with LRU eviction.
type DiskCache struct {
	mu sync.Mutex

	root      string
	maxBytes  int64
	usedBytes int64

	entries map[string]*entry
	lru     *list.List // front = most recently used
}

// DiskConfig holds configuration for the disk cache.
type DiskConfig struct {
	RootPath string
	MaxBytes int64
}

// NewDiskCache opens or creates the cache directory and indexes what is
// already there, oldest first.
func NewDiskCache(cfg DiskConfig) (*DiskCache, error) {
	if cfg.RootPath == "" {
		return nil, fmt.Errorf("cache root path is empty")
	}
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("cache max bytes must be positive, got %d", cfg.MaxBytes)
	}
	root, err := filepath.Abs(cfg.RootPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	dc := &DiskCache{
		root:     root,
		maxBytes: cfg.MaxBytes,
		entries:  make(map[string]*entry),
		lru:      list.New(),
	}
	if err := dc.loadExisting(); err != nil {
		return nil, err
	}
	metrics.SetCacheBytes(dc.usedBytes)
	return dc, nil
}

func (dc *DiskCache) loadExisting() error {
	dirEntries, err := os.ReadDir(dc.root)
	if err != nil {
		return err
	}

	type found struct {
		ent   *entry
		mtime time.Time
	}
	var all []found
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, metadataSuffix) {
			continue
		}
		if strings.HasPrefix(name, tempPrefix) {
			os.Remove(filepath.Join(dc.root, name))
			continue
		}
		key, ok := readMetadata(metadataPath(dc.root, name))
		if !ok {
			// without metadata the entry can never be looked up
			os.Remove(filepath.Join(dc.root, name))
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		all = append(all, found{
			ent:   &entry{key: key, hash: name, path: filepath.Join(dc.root, name), size: info.Size()},
			mtime: info.ModTime(),
		})
	}

	// newest first so PushBack leaves the oldest at the back
	sort.Slice(all, func(i, j int) bool { return all[i].mtime.After(all[j].mtime) })
	for _, f := range all {
		f.ent.element = dc.lru.PushBack(f.ent)
		dc.entries[f.ent.hash] = f.ent
		dc.usedBytes += f.ent.size
	}
	return nil
}

// Get returns the path of the cached object.
func (dc *DiskCache) Get(key Key) (string, error) {
	hash := key.hash()

	dc.mu.Lock()
	defer dc.mu.Unlock()

	ent, ok := dc.entries[hash]
	if !ok {
		metrics.ObserveCacheLookup(false)
		return "", ErrCacheMiss
	}
	dc.lru.MoveToFront(ent.element)

	// mtime carries recency across restarts
	now := time.Now()
	os.Chtimes(ent.path, now, now)

	metrics.ObserveCacheLookup(true)
	return ent.path, nil
}

// Put copies data into the cache, evicting older entries as needed.
// The entry becomes visible only after it has been fully written.
func (dc *DiskCache) Put(key Key, data io.Reader, size int64) (string, error) {
	hash := key.hash()

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if ent, ok := dc.entries[hash]; ok {
		dc.lru.MoveToFront(ent.element)
		return ent.path, nil
	}
	if size > dc.maxBytes {
		return "", fmt.Errorf("%w: object of %d bytes exceeds budget of %d", ErrCacheFull, size, dc.maxBytes)
	}
	dc.evictLocked(size)

	tmp, err := os.CreateTemp(dc.root, tempPrefix+"*")
	if err != nil {
		return "", err
	}
	written, err := io.Copy(tmp, data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	path := filepath.Join(dc.root, hash)
	if err := writeMetadata(metadataPath(dc.root, hash), key); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		os.Remove(metadataPath(dc.root, hash))
		return "", err
	}

	ent := &entry{key: key, hash: hash, path: path, size: written}
	ent.element = dc.lru.PushFront(ent)
	dc.entries[hash] = ent
	dc.usedBytes += written
	metrics.SetCacheBytes(dc.usedBytes)
	return path, nil
}

// evictLocked drops least recently used entries until needed bytes fit.
func (dc *DiskCache) evictLocked(needed int64) {
	for dc.usedBytes+needed > dc.maxBytes {
		elem := dc.lru.Back()
		if elem == nil {
			return
		}
		dc.removeLocked(elem.Value.(*entry))
	}
}

func (dc *DiskCache) removeLocked(ent *entry) {
	os.Remove(ent.path)
	os.Remove(metadataPath(dc.root, ent.hash))
	dc.lru.Remove(ent.element)
	delete(dc.entries, ent.hash)
	dc.usedBytes -= ent.size
	metrics.SetCacheBytes(dc.usedBytes)
}

// Stats contains cache statistics.
type Stats struct {
	UsedBytes  int64
	MaxBytes   int64
	EntryCount int
}

func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return Stats{
		UsedBytes:  dc.usedBytes,
		MaxBytes:   dc.maxBytes,
		EntryCount: len(dc.entries),
	}
}
