// Package cache keeps web search results on disk so repeated questions do
// not hit the search endpoint and the result pages again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/pkg/filesystem"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// DefaultMaxEntries bounds the number of cached queries.
const DefaultMaxEntries = 100

type entry struct {
	Query     string                `json:"query"`
	CreatedAt time.Time             `json:"created_at"`
	Results   []domain.SearchResult `json:"results"`
}

// SearchCache decorates a SearchAggregator with a JSON file per query.
type SearchCache struct {
	next       ports.SearchAggregator
	dir        string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     ports.Logger
	mu         sync.Mutex
}

// DefaultDir returns ~/.aicmd/cache/search.
func DefaultDir() string {
	return filesystem.AppPath("cache", "search")
}

// NewSearchCache wraps next. Entries older than ttl are refetched.
func NewSearchCache(next ports.SearchAggregator, dir string, ttl time.Duration, logger ports.Logger) *SearchCache {
	if dir == "" {
		dir = DefaultDir()
	}
	return &SearchCache{
		next:       next,
		dir:        dir,
		ttl:        ttl,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		logger:     logger,
	}
}

// Search returns cached results when fresh. Empty results are never stored,
// so a failed search is retried next time.
func (c *SearchCache) Search(ctx context.Context, query string) []domain.SearchResult {
	key := keyFor(query)
	if results, ok := c.get(key); ok {
		c.debug("search cache hit", query)
		return results
	}

	results := c.next.Search(ctx, query)
	if len(results) > 0 {
		if err := c.set(key, entry{Query: query, CreatedAt: c.now(), Results: results}); err != nil && c.logger != nil {
			c.logger.Warn("search cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return results
}

// Clear removes all cached entries.
func (c *SearchCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}

// Dir exposes the cache directory path.
func (c *SearchCache) Dir() string {
	return c.dir
}

func (c *SearchCache) get(key string) ([]domain.SearchResult, bool) {
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Results, true
}

func (c *SearchCache) set(key string, e entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, domain.DirectoryPermissions); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.pathFor(key), data, domain.SecureFilePermissions); err != nil {
		return err
	}
	return c.evictIfNeeded()
}

// evictIfNeeded drops the oldest files beyond maxEntries.
func (c *SearchCache) evictIfNeeded() error {
	files, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(files) <= c.maxEntries {
		return nil
	}

	type fileInfo struct {
		name string
		mod  time.Time
	}
	var infos []fileInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].mod.Before(infos[j].mod) })
	for len(infos) > c.maxEntries {
		_ = os.Remove(filepath.Join(c.dir, infos[0].name))
		infos = infos[1:]
	}
	return nil
}

func (c *SearchCache) pathFor(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *SearchCache) debug(msg, query string) {
	if c.logger != nil {
		c.logger.Debug(msg, map[string]interface{}{"query": query})
	}
}

// keyFor normalizes case and spacing so trivially different spellings of a
// query share an entry.
func keyFor(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

var _ ports.SearchAggregator = (*SearchCache)(nil)
