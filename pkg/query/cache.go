package query

import (
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/tsq/pkg/dialect"
)

// DefaultCacheSize is the number of compiled queries a Cache keeps when no
// limit is given.
const DefaultCacheSize = 128

// cacheKey scopes a pattern to the grammar it compiles against, so the same
// pattern text never resolves to a query of the other dialect.
type cacheKey struct {
	grammar string
	pattern string
	dialect dialect.Dialect
}

type cacheEntry struct {
	query *Query
	prev  *cacheEntry
	next  *cacheEntry
	key   cacheKey
}

// Cache holds compiled queries, evicting the least recently used one when
// full. Failed compilations are not cached. A Cache is safe for concurrent use.
type Cache struct {
	entries map[cacheKey]*cacheEntry
	head    *cacheEntry // Most recently used.
	tail    *cacheEntry // Least recently used.
	maxSize int
	mu      sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache bounded to maxSize queries. A non-positive size
// selects DefaultCacheSize.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	return &Cache{
		entries: make(map[cacheKey]*cacheEntry),
		maxSize: maxSize,
	}
}

// Compile returns the cached query for pattern and grammar, compiling and
// storing it on a miss.
func (c *Cache) Compile(pattern string, grammar dialect.Grammar) (*Query, error) {
	if grammar == nil {
		return nil, ErrNilGrammar
	}

	key := cacheKey{grammar: grammar.Name(), pattern: pattern, dialect: grammar.Dialect()}

	if q := c.get(key); q != nil {
		c.hits.Add(1)

		return q, nil
	}

	c.misses.Add(1)

	q, err := Compile(pattern, grammar)
	if err != nil {
		return nil, err
	}

	return c.put(key, q), nil
}

// CompileDialect is Compile against the bundled grammar of dialect d.
func (c *Cache) CompileDialect(pattern string, d dialect.Dialect) (*Query, error) {
	return c.Compile(pattern, dialect.For(d))
}

func (c *Cache) get(key cacheKey) *Query {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	c.moveToFront(entry)

	return entry.query
}

// put stores q unless a concurrent caller stored the same key first, and
// returns whichever query is cached.
func (c *Cache) put(key cacheKey, q *Query) *Query {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.moveToFront(entry)

		return entry.query
	}

	for len(c.entries) >= c.maxSize && c.tail != nil {
		victim := c.tail
		c.removeFromList(victim)
		delete(c.entries, victim.key)
	}

	entry := &cacheEntry{key: key, query: q}
	c.entries[key] = entry
	c.addToFront(entry)

	return q
}

// CacheStats holds cache performance counters.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
	MaxSize int
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: len(c.entries),
		MaxSize: c.maxSize,
	}
}

// Clear drops every cached query. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]*cacheEntry)
	c.head = nil
	c.tail = nil
}

func (c *Cache) moveToFront(entry *cacheEntry) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *Cache) addToFront(entry *cacheEntry) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *Cache) removeFromList(entry *cacheEntry) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}

	entry.prev = nil
	entry.next = nil
}
