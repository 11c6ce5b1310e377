package catalog

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// CacheFileName is the cache file's name inside the temp directory.
	CacheFileName = "graft_models_cache.json"
	// DefaultTTL is how long a cached catalog stays fresh.
	DefaultTTL = 6 * time.Hour
)

// Cache is a best-effort file cache for the raw catalog. Freshness is
// judged by the file's modification time. Every failure is a miss.
type Cache struct {
	Path string
	TTL  time.Duration
	Now  func() time.Time
}

// DefaultCache returns the cache in the system temp directory.
func DefaultCache() *Cache {
	return &Cache{
		Path: filepath.Join(os.TempDir(), CacheFileName),
		TTL:  DefaultTTL,
		Now:  time.Now,
	}
}

func (c *Cache) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Load returns the cached bytes if the file exists and is fresh.
func (c *Cache) Load() ([]byte, bool) {
	if c == nil || c.Path == "" {
		return nil, false
	}
	info, err := os.Stat(c.Path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) >= c.TTL {
		return nil, false
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Save replaces the cache file. Errors are ignored.
func (c *Cache) Save(data []byte) {
	if c == nil || c.Path == "" {
		return
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.Path), ".graft_models_*.tmp")
	if err != nil {
		return
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		os.Remove(tmp.Name())
	}
}
