package memory

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// CacheRepo — кэш в памяти процесса: без TTL, без ограничения размера и без фоновой очистки.
type CacheRepo struct {
	items *gocache.Cache
}

func NewCacheRepo() *CacheRepo {
	return &CacheRepo{items: gocache.New(gocache.NoExpiration, 0)}
}

func (c *CacheRepo) Has(_ context.Context, key string) (bool, error) {
	_, ok := c.items.Get(key)
	return ok, nil
}

// Get возвращает копию значения, чтобы вызывающий не мог изменить закэшированные байты.
func (c *CacheRepo) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (c *CacheRepo) Set(_ context.Context, key string, value []byte) error {
	c.items.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

func (c *CacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.items.Delete(key)
	}
	return nil
}
