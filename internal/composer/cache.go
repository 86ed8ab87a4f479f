package composer

import "sync"

// Cache maps date keys to stored content for the session. A cached "" means
// the server has no entry for that date.
type Cache struct {
	mu  sync.RWMutex
	m   map[string]string
	gen uint64
}

func NewCache() *Cache {
	return &Cache{m: map[string]string{}}
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

// Set records content written by this session. It always wins over a fill.
func (c *Cache) Set(key, content string) {
	c.mu.Lock()
	c.m[key] = content
	c.mu.Unlock()
}

// generation identifies the session the cache currently belongs to. Clear
// starts a new one.
func (c *Cache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// fill stores a value fetched during generation gen. It keeps a key set in
// the meantime, so a slow read cannot overwrite a newer local save, and it
// drops values fetched before the last Clear.
func (c *Cache) fill(gen uint64, key, content string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return content
	}
	if v, ok := c.m[key]; ok {
		return v
	}
	c.m[key] = content
	return content
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Clear drops everything, e.g. on logout. Fetches still in flight will not
// repopulate it.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = map[string]string{}
	c.gen++
	c.mu.Unlock()
}
