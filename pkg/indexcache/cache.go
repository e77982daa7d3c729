// Package indexcache persists logical record indexes between runs so that
// reopening a large file does not require rescanning it. Entries are keyed
// by file path and validated against the file's size and modification time.
package indexcache

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	jsoniter "github.com/json-iterator/go"

	"github.com/welldata/dlis/pkg/dlis"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Cache is a pebble-backed store of per-file record indexes.
type Cache struct {
	db *pebble.DB
}

// Open opens or creates a cache database in dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open index cache: %w", err)
	}
	return &Cache{db: db}, nil
}

type cachedIndex struct {
	Size    int64             `json:"size"`
	ModTime int64             `json:"mod_time_unix_nano"`
	Entries []dlis.IndexEntry `json:"entries"`
}

func cacheKey(path string) []byte {
	return []byte("index/" + path)
}

// Put stores the index for path, stamped with the file's current size and
// modification time.
func (c *Cache) Put(path string, entries []dlis.IndexEntry) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := json.Marshal(cachedIndex{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to encode index for %s: %w", path, err)
	}

	if err := c.db.Set(cacheKey(path), data, pebble.NoSync); err != nil {
		return fmt.Errorf("failed to store index for %s: %w", path, err)
	}
	return nil
}

// Get returns the cached index for path. A cached entry whose size or
// modification time no longer matches the file on disk is evicted and
// reported as a miss.
func (c *Cache) Get(path string) ([]dlis.IndexEntry, bool, error) {
	data, closer, err := c.db.Get(cacheKey(path))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read index for %s: %w", path, err)
	}

	var cached cachedIndex
	err = json.Unmarshal(data, &cached)
	closer.Close()
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode index for %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() != cached.Size || info.ModTime().UnixNano() != cached.ModTime {
		// stale entry, the file changed underneath us
		if err := c.Invalidate(path); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	return cached.Entries, true, nil
}

// Invalidate removes the cached index for path, if any.
func (c *Cache) Invalidate(path string) error {
	if err := c.db.Delete(cacheKey(path), pebble.NoSync); err != nil {
		return fmt.Errorf("failed to evict index for %s: %w", path, err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
