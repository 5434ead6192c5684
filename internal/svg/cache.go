package svg

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// DocumentCache provides thread-safe caching of parsed documents to avoid
// redundant disk reads and re-parses.
//
// Entries are keyed by the exact path string and invalidated when the
// file's modification time changes, so editing a document between tool
// calls is picked up without restarting the server.
type DocumentCache struct {
	mu   sync.RWMutex
	docs map[string]cacheEntry
}

type cacheEntry struct {
	doc     *Document
	modTime time.Time
}

// NewDocumentCache creates an empty cache ready for concurrent use.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{
		docs: make(map[string]cacheEntry),
	}
}

// Load returns the parsed document for path, reading and parsing the file
// only when it is not cached or has changed on disk since it was cached.
func (c *DocumentCache) Load(path string) (*Document, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}

	c.mu.RLock()
	if e, ok := c.docs[path]; ok && e.modTime.Equal(stat.ModTime()) {
		c.mu.RUnlock()
		return e.doc, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.docs[path] = cacheEntry{doc: doc, modTime: stat.ModTime()}
	c.mu.Unlock()

	return doc, nil
}

// Evict removes a specific document from the cache by its path.
func (c *DocumentCache) Evict(path string) {
	c.mu.Lock()
	delete(c.docs, path)
	c.mu.Unlock()
}

// Clear removes all cached documents.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	c.docs = make(map[string]cacheEntry)
	c.mu.Unlock()
}
