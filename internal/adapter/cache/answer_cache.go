// Package cache provides a small TTL cache for chat answers.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/geziefer/docchat/internal/domain"
)

// AnswerCache memoises answers by question. Every document mutation bumps a
// generation counter, so answers computed against an older corpus are never
// served again.
type AnswerCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
	gen     uint64
}

type cacheEntry struct {
	answer    domain.ChatAnswer
	timestamp time.Time
	gen       uint64
}

// New creates an answer cache. Non-positive arguments fall back to 100
// entries and a 5 minute TTL.
func New(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string) string {
	hash := sha256.Sum256([]byte(question))
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached answer for question if it is fresh and from the
// current corpus generation.
func (c *AnswerCache) Get(question string) (domain.ChatAnswer, bool) {
	c.mu.RLock()
	entry, exists := c.entries[cacheKey(question)]
	currentGen := c.gen
	c.mu.RUnlock()

	if !exists || entry.gen != currentGen || time.Since(entry.timestamp) > c.ttl {
		return domain.ChatAnswer{}, false
	}
	return entry.answer, true
}

// Put stores an answer for question.
func (c *AnswerCache) Put(question string, answer domain.ChatAnswer) {
	key := cacheKey(question)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{
		answer:    answer,
		timestamp: time.Now(),
		gen:       c.gen,
	}
}

// Invalidate marks all cached answers stale. Called after any document is
// ingested or deleted.
func (c *AnswerCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
}

// Len returns the number of cached entries, including stale ones.
func (c *AnswerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
