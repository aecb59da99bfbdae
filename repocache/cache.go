// Package repocache caches a repository's fetched package index across two
// tiers: an in-memory map consulted first, and a per-URL JSON file on disk
// with a time-to-live, consulted when the process restarts.
//
// Grounded on original_source/src/core/repo_manager.py's
// _get_cache_file_path/_save_packages_cache/clear_cache.
package repocache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/evil0ctal/tweakcore/record"
)

// TTL is how long a disk-cached index stays fresh before a caller must
// force a refetch.
const TTL = 24 * time.Hour

type diskEntry struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Packages  []*record.Package `json:"packages"`
}

// Cache is a two-tier repository package-index cache.
type Cache struct {
	dir string

	mu     sync.Mutex
	memory map[string][]*record.Package
}

// New returns a Cache backed by cacheDir, creating it if necessary.
func New(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, err
	}
	return &Cache{dir: cacheDir, memory: make(map[string][]*record.Package)}, nil
}

func cacheFileKey(repoURL string) string {
	sum := md5.Sum([]byte(repoURL))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(repoURL string) string {
	return filepath.Join(c.dir, cacheFileKey(repoURL)+".json")
}

// Get returns the cached packages for repoURL and whether they were found
// and still fresh. The in-memory tier is consulted first; a miss there
// falls through to the disk tier, which is loaded into memory on a hit.
// A corrupt or stale disk file counts as a miss, not an error.
func (c *Cache) Get(repoURL string) ([]*record.Package, bool) {
	c.mu.Lock()
	if pkgs, ok := c.memory[repoURL]; ok {
		c.mu.Unlock()
		return pkgs, true
	}
	c.mu.Unlock()

	data, err := os.ReadFile(c.path(repoURL))
	if err != nil {
		return nil, false
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Since(entry.FetchedAt) >= TTL {
		return nil, false
	}

	c.mu.Lock()
	c.memory[repoURL] = entry.Packages
	c.mu.Unlock()
	return entry.Packages, true
}

// Put stores pkgs for repoURL in both tiers.
func (c *Cache) Put(repoURL string, pkgs []*record.Package) error {
	c.mu.Lock()
	c.memory[repoURL] = pkgs
	c.mu.Unlock()

	data, err := json.Marshal(diskEntry{FetchedAt: now(), Packages: pkgs})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(repoURL), data, 0644)
}

// Clear removes the cached entry for one repo, both tiers.
func (c *Cache) Clear(repoURL string) error {
	c.mu.Lock()
	delete(c.memory, repoURL)
	c.mu.Unlock()
	err := os.Remove(c.path(repoURL))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll wipes every cached entry, both tiers.
func (c *Cache) ClearAll() error {
	c.mu.Lock()
	c.memory = make(map[string][]*record.Package)
	c.mu.Unlock()
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}

// now is a seam so tests can avoid depending on wall-clock time directly
// if ever needed; production always uses time.Now.
var now = time.Now
