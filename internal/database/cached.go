package database

import (
	"github.com/coocood/freecache"

	"gt-go/internal/gt"
)

// CachedStore is a read-through cache in front of another store. Writes go
// to the backing store first and only then replace the cached value.
type CachedStore struct {
	next  gt.Store
	cache *freecache.Cache
}

// NewCachedStore wraps next with a freecache of sizeMB megabytes. A size of
// zero or less returns next unchanged.
func NewCachedStore(next gt.Store, sizeMB int) gt.Store {
	if sizeMB <= 0 {
		return next
	}
	return &CachedStore{
		next:  next,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (c *CachedStore) Get(key string) ([]byte, bool, error) {
	if v, err := c.cache.Get([]byte(key)); err == nil {
		return v, true, nil
	}

	v, ok, err := c.next.Get(key)
	if err != nil || !ok {
		return v, ok, err
	}
	// Entries too large for the cache are simply not cached.
	_ = c.cache.Set([]byte(key), v, 0)
	return v, true, nil
}

func (c *CachedStore) Set(key string, value []byte) error {
	if err := c.next.Set(key, value); err != nil {
		c.cache.Del([]byte(key))
		return err
	}
	_ = c.cache.Set([]byte(key), value, 0)
	return nil
}

func (c *CachedStore) Keys() ([]string, error) {
	return c.next.Keys()
}

func (c *CachedStore) Close() error {
	c.cache.Clear()
	return c.next.Close()
}
