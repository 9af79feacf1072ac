package cache

import (
	"container/list"
	"strings"
	"sync"
)

// Cache is a thread-safe LRU byte cache bounded by entry count and total
// size. Keys are namespaced by a version tag so a whole generation can be
// dropped at once.
type Cache struct {
	capacity int
	size     int64
	maxSize  int64
	items    map[string]*list.Element
	order    *list.List
	mu       sync.RWMutex
}

type entry struct {
	key  string
	data []byte
}

func New(capacity int, maxSizeBytes int64) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		maxSize:  maxSizeBytes,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Key joins a version tag and a resource key.
func Key(version, key string) string {
	return version + "|" + key
}

// VersionOf returns the version tag of a key built by Key.
func VersionOf(key string) string {
	version, _, _ := strings.Cut(key, "|")
	return version
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry).data, true
	}
	return nil, false
}

// Set stores data under key. Values larger than the size bound are not
// cached, and any older value under key is dropped.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(data))
	if n > c.maxSize {
		if elem, ok := c.items[key]; ok {
			c.removeElement(elem)
		}
		return
	}

	if elem, ok := c.items[key]; ok {
		old := elem.Value.(*entry)
		c.size += n - int64(len(old.data))
		old.data = data
		c.order.MoveToFront(elem)
		c.shrink(elem)
		return
	}

	for c.order.Len() >= c.capacity || (c.size+n > c.maxSize && c.order.Len() > 0) {
		c.removeElement(c.order.Back())
	}

	c.items[key] = c.order.PushFront(&entry{key: key, data: data})
	c.size += n
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// DeleteFunc removes every entry whose key matches and returns how many
// were removed.
func (c *Cache) DeleteFunc(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if match(elem.Value.(*entry).key) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Versions lists the distinct version tags currently held.
func (c *Cache) Versions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var versions []string
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		v := VersionOf(elem.Value.(*entry).key)
		if !seen[v] {
			seen[v] = true
			versions = append(versions, v)
		}
	}
	return versions
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

func (c *Cache) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// shrink evicts from the back until the size bound holds again, never
// evicting keep.
func (c *Cache) shrink(keep *list.Element) {
	for c.size > c.maxSize {
		back := c.order.Back()
		if back == nil || back == keep {
			return
		}
		c.removeElement(back)
	}
}

func (c *Cache) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.items, e.key)
	c.size -= int64(len(e.data))
}
