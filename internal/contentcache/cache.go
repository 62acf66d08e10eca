// Package contentcache holds the normalized result set per source key.
// An entry is immutable after construction; replacing it means
// publishing a new object, never mutating the old one, so readers that
// already hold a reference keep a consistent view.
package contentcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/models"
)

const snapshotFile = "content_cache.json"

// Entry is one cached ingestion result. Either entirely fresh or
// entirely absent; posts and pages always come from the same fetch.
type Entry struct {
	Posts     []models.Post `json:"posts"`
	Pages     []models.Page `json:"pages"`
	FetchedAt time.Time     `json:"fetched_at"`
	SourceKey string        `json:"source_key"`
}

// Cache is a process-scoped TTL cache keyed by source key.
type Cache struct {
	mu           sync.RWMutex
	entries      map[string]*Entry
	invalid      map[string]struct{}
	ttl          time.Duration
	snapshotPath string
}

// New builds a cache with the given TTL. snapshotDir may be empty to
// disable the disk snapshot; when set, the last persisted state is
// loaded best-effort so a restart during an upstream outage can still
// serve the last good content.
func New(ttl time.Duration, snapshotDir string) (*Cache, error) {
	c := &Cache{
		entries: make(map[string]*Entry),
		invalid: make(map[string]struct{}),
		ttl:     ttl,
	}

	if snapshotDir != "" {
		if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		c.snapshotPath = filepath.Join(snapshotDir, snapshotFile)
		c.loadSnapshot()
	}

	return c, nil
}

// Get returns the entry for key if it is present, fresh and not
// manually invalidated. Expired entries are treated as absent but kept
// until overwritten, so the stale fallback still has something to
// serve.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, bad := c.invalid[key]; bad {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok || time.Since(entry.FetchedAt) > c.ttl {
		return nil, false
	}
	return entry, true
}

// GetStale returns whatever entry exists for key, regardless of TTL or
// invalidation. Used only for the availability-over-freshness fallback
// when the remote is down.
func (c *Cache) GetStale(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Put publishes a new entry for key, atomically as seen by all readers.
func (c *Cache) Put(key string, entry *Entry) {
	c.mu.Lock()
	c.entries[key] = entry
	delete(c.invalid, key)
	c.saveSnapshotLocked()
	c.mu.Unlock()
}

// Invalidate forces the next Get for key to miss regardless of TTL. The
// entry itself is retained for GetStale.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	c.invalid[key] = struct{}{}
	c.mu.Unlock()
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// --- snapshot internals ---

type snapshot struct {
	Entries map[string]*Entry `json:"entries"`
	SavedAt time.Time         `json:"saved_at"`
}

func (c *Cache) loadSnapshot() {
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug("cache snapshot unreadable (starting empty): %v", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Debug("cache snapshot corrupt (starting empty): %v", err)
		return
	}
	if snap.Entries != nil {
		c.entries = snap.Entries
	}
	logger.Debug("loaded cache snapshot (%d entries, saved %s)", len(c.entries), snap.SavedAt.Format(time.RFC3339))
}

func (c *Cache) saveSnapshotLocked() {
	if c.snapshotPath == "" {
		return
	}

	data, err := json.MarshalIndent(snapshot{Entries: c.entries, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		logger.Debug("cache snapshot marshal failed: %v", err)
		return
	}

	tmp := c.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Debug("cache snapshot write failed: %v", err)
		return
	}
	if err := os.Rename(tmp, c.snapshotPath); err != nil {
		logger.Debug("cache snapshot rename failed: %v", err)
	}
}
