// Package datacache memoizes parsed CSV datasets between render
// cycles. Entries are keyed by absolute path and carry a size+mtime
// fingerprint that is re-checked on every lookup, and an fsnotify
// watcher evicts entries the moment the underlying file changes — the
// cache can serve stale bytes only between a write and the next stat,
// never across one.
package datacache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	gocache "github.com/patrickmn/go-cache"

	"geomap-dashboard/pkg/geodata"
	"geomap-dashboard/pkg/telemetry"
)

// Store wraps the TTL cache and the filesystem watcher. The watcher
// goroutine is the only reader of its event channel; evictions go
// straight to the cache, which is safe for concurrent use.
type Store struct {
	entries *gocache.Cache
	watcher *fsnotify.Watcher

	// loadFn is swappable so tests can count real parses.
	loadFn func(string) (*geodata.Dataset, error)
}

type entry struct {
	ds    *geodata.Dataset
	size  int64
	mtime time.Time
}

// New builds a store whose entries expire after ttl even without file
// changes. A watcher failure is not fatal: the fingerprint check alone
// still guarantees freshness, invalidation just becomes lazy.
func New(ttl time.Duration) *Store {
	s := &Store{
		entries: gocache.New(ttl, 2*ttl),
		loadFn:  geodata.Load,
	}
	if w, err := fsnotify.NewWatcher(); err == nil {
		s.watcher = w
		go s.watch()
	}
	return s
}

// Watch registers the directory holding path so rewrites, renames and
// deletions evict the entry. Watching the directory instead of the
// file keeps eviction working across editors that replace-on-save.
func (s *Store) Watch(path string) {
	if s.watcher == nil {
		return
	}
	_ = s.watcher.Add(filepath.Dir(keyFor(path)))
}

// Close stops the watcher. Cached entries stay valid until their
// fingerprints diverge or the TTL runs out.
func (s *Store) Close() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
}

// Load returns the memoized dataset for path, re-parsing when the file
// changed or nothing is cached. Errors are never cached: a missing
// file that reappears loads on the next call.
func (s *Store) Load(path string) (*geodata.Dataset, error) {
	key := keyFor(path)
	fi, statErr := os.Stat(key)

	if v, ok := s.entries.Get(key); ok {
		e := v.(entry)
		if statErr == nil && fi.Size() == e.size && fi.ModTime().Equal(e.mtime) {
			telemetry.CacheHitsTotal.Inc()
			return e.ds, nil
		}
		s.entries.Delete(key)
	}
	telemetry.CacheMissesTotal.Inc()

	ds, err := s.loadFn(key)
	if err != nil {
		return nil, err
	}
	if statErr == nil {
		s.entries.Set(key, entry{ds: ds, size: fi.Size(), mtime: fi.ModTime()}, gocache.DefaultExpiration)
	}
	return ds, nil
}

func (s *Store) watch() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.entries.Delete(keyFor(ev.Name))
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// keyFor normalizes a path so flag values, env values and fsnotify
// event names all land on the same cache key.
func keyFor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
