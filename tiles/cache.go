package tiles

import (
	"image"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// State tags what the map currently knows about a tile.
type State int

const (
	Missing State = iota
	Loading
	Placeholder
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Placeholder:
		return "placeholder"
	case Ready:
		return "ready"
	default:
		return "missing"
	}
}

// Entry is a cached tile. Image is shared between readers and must not be
// modified after it has been stored.
type Entry struct {
	State   State
	Image   image.Image
	Updated time.Time
}

// Cache holds fetched and generated tiles keyed by (zoom, x, y).
// It is safe for concurrent use.
type Cache struct {
	entries *lru.Cache[Key, Entry]
}

// NewCache creates a cache. maxEntries <= 0 means no bound: tiles are only
// dropped by EvictZoomLevel.
func NewCache(maxEntries int) *Cache {
	size := maxEntries
	if size <= 0 {
		size = math.MaxInt32
	}
	entries, err := lru.New[Key, Entry](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Cache{entries: entries}
}

func (c *Cache) Get(key Key) (Entry, bool) {
	return c.entries.Get(key)
}

// Put stores the entry, replacing any previous one for the key.
func (c *Cache) Put(key Key, e Entry) {
	if e.Updated.IsZero() {
		e.Updated = time.Now()
	}
	c.entries.Add(key, e)
	cacheEntries.Set(float64(c.entries.Len()))
}

// EvictZoomLevel removes every tile of the given zoom and returns how many
// were dropped. Other zoom levels are kept.
func (c *Cache) EvictZoomLevel(zoom int) int {
	n := 0
	for _, k := range c.entries.Keys() {
		if k.Zoom == zoom && c.entries.Remove(k) {
			n++
		}
	}
	cacheEntries.Set(float64(c.entries.Len()))
	return n
}

// Keys returns the cached keys from least to most recently used.
func (c *Cache) Keys() []Key {
	return c.entries.Keys()
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Clear() {
	c.entries.Purge()
	cacheEntries.Set(0)
}
