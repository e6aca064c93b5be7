package forcedaligner

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/sammywachtel/hardy-align/internal/align"
)

// Cache memoizes forced-alignment results by audio content hash, so a
// client retrying the same request (or re-submitting identical audio
// across jobs) doesn't pay for a second backend round trip. Bounded to
// avoid unbounded growth across a long-running process.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]align.Word
	order   []string
	maxSize int
}

// NewCache builds an empty cache holding at most maxSize entries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		entries: make(map[string][]align.Word),
		maxSize: maxSize,
	}
}

// HashAudio returns a stable content hash for a base64 audio payload,
// used as the cache key.
func HashAudio(audioBase64 string) string {
	sum := sha256.Sum256([]byte(audioBase64))
	return hex.EncodeToString(sum[:])
}

// Get returns a cached word list for the given hash, if present.
func (c *Cache) Get(hash string) ([]align.Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	words, ok := c.entries[hash]
	return words, ok
}

// Put stores a word list under the given hash, evicting the oldest
// entry once the cache is full.
func (c *Cache) Put(hash string, words []align.Word) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hash]; exists {
		c.entries[hash] = words
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[hash] = words
	c.order = append(c.order, hash)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
