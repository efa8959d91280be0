package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedResponse is the memoized output of one full pipeline run.
type CachedResponse struct {
	Answer    string                   `json:"answer"`
	Sql       string                   `json:"sql"`
	RawData   []map[string]interface{} `json:"raw_data"`
	CreatedAt time.Time                `json:"created_at"`
}

// CacheStats is the read-only counter snapshot exposed over HTTP.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// ResponseCache memoizes pipeline output keyed by the normalized original
// question. Bounded: oldest entries are evicted first when the entry cap is
// exceeded. Eviction holds the lock only for the queue bookkeeping.
type ResponseCache struct {
	cache      *cache.Cache
	maxEntries int

	mu        sync.Mutex
	order     []string // insertion order of keys, oldest first
	hits      int64
	misses    int64
	evictions int64
}

func NewResponseCache(ttl time.Duration, maxEntries int) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResponseCache{
		cache:      cache.New(ttl, 10*time.Minute),
		maxEntries: maxEntries,
	}
}

// NormalizeKey case-folds and trims the question, then content-addresses it.
// Keyed on the ORIGINAL question, not the rewritten one: the cache is meant
// to catch verbatim repeats.
func NormalizeKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response for a question, if present and fresh.
func (c *ResponseCache) Get(question string) (*CachedResponse, bool) {
	key := NormalizeKey(question)
	x, found := c.cache.Get(key)

	c.mu.Lock()
	if found {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !found {
		return nil, false
	}
	return x.(*CachedResponse), true
}

// Set stores the response, evicting the oldest entry when over the cap.
func (c *ResponseCache) Set(question string, response *CachedResponse) {
	key := NormalizeKey(question)

	c.mu.Lock()
	if _, live := c.cache.Get(key); !live {
		// A TTL-expired entry leaves its queue slot behind; drop it so a
		// re-Set key never occupies two slots.
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
		c.order = append(c.order, key)
		for c.maxEntries > 0 && len(c.order) > c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			// A slot whose entry already expired is not a capacity
			// eviction.
			if _, live := c.cache.Get(oldest); live {
				c.cache.Delete(oldest)
				c.evictions++
			}
		}
	}
	c.mu.Unlock()

	c.cache.Set(key, response, cache.DefaultExpiration)
}

// Stats returns a point-in-time counter snapshot.
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   c.cache.ItemCount(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
