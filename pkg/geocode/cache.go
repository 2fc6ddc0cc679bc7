package geocode

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Key builds the cache key for a provider and query. Keys are lowercased so
// two raw strings that normalize identically share one entry.
func Key(provider, query string) string {
	return provider + ":" + strings.ToLower(strings.TrimSpace(query))
}

// FileCache is an append-only memo of geocode results, persisted as an
// indented JSON object so operators can inspect and hand-edit it. It has no
// TTL and no eviction: for a given key, at most one provider call is ever
// issued across the lifetime of the file. Not safe for concurrent use; the
// pipeline is single-threaded by design.
type FileCache struct {
	path    string
	entries map[string]Result
	dirty   bool
}

// OpenCache loads the cache from path. A missing or corrupt file yields an
// empty cache, never an error: losing the memo is a cost problem, not a
// correctness problem.
func OpenCache(path string) *FileCache {
	c := &FileCache{path: path, entries: make(map[string]Result)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("geocode cache unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		zap.L().Warn("geocode cache corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		c.entries = make(map[string]Result)
		return c
	}
	zap.L().Debug("geocode cache loaded",
		zap.String("path", path), zap.Int("entries", len(c.entries)))
	return c
}

// Get returns the cached result for key, if present.
func (c *FileCache) Get(key string) (Result, bool) {
	r, ok := c.entries[key]
	return r, ok
}

// Put stores a result under key.
func (c *FileCache) Put(key string, r Result) {
	c.entries[key] = r
	c.dirty = true
}

// Delete removes a single entry, reporting whether it existed.
func (c *FileCache) Delete(key string) bool {
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.dirty = true
	return true
}

// ClearStatus removes every entry with the given status and returns how
// many were dropped. This is the invalidation entry point for sticky
// failure statuses such as ERROR.
func (c *FileCache) ClearStatus(status Status) int {
	var n int
	for k, r := range c.entries {
		if r.Status == status {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 {
		c.dirty = true
	}
	return n
}

// Len returns the number of cached entries.
func (c *FileCache) Len() int {
	return len(c.entries)
}

// Keys returns all cache keys in sorted order.
func (c *FileCache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StatusCounts tallies entries per status.
func (c *FileCache) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range c.entries {
		counts[r.Status]++
	}
	return counts
}

// Flush persists the cache if it changed since the last write. The write
// goes to a temporary file in the same directory followed by a rename, so
// a crash mid-write cannot corrupt the previous on-disk state.
func (c *FileCache) Flush() error {
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "geocode: marshal cache")
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "geocode: create cache temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "geocode: write cache")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "geocode: close cache temp file")
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "geocode: rename cache into place")
	}

	c.dirty = false
	zap.L().Debug("geocode cache flushed",
		zap.String("path", c.path), zap.Int("entries", len(c.entries)))
	return nil
}

// Close flushes any pending entries.
func (c *FileCache) Close() error {
	return c.Flush()
}
