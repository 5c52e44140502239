package layout

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// cache is keyed by the mangled type name, which is unique per concrete type.
type cache struct {
	byType map[string]cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[string]cacheEntry, 256)}
}

func (c *cache) get(key string) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	l, ok := c.byType[key]
	return l, ok
}

func (c *cache) put(key string, l *cacheEntry) {
	if c == nil {
		return
	}
	if l == nil {
		delete(c.byType, key)
		return
	}
	c.byType[key] = *l
}
