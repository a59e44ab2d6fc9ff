package redis

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront-backend/pkg/clients"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo хранит сериализованные ответы каталога в Redis.
// Записи кладутся без TTL: актуальность держится только инвалидацией.
type CacheRepo struct {
	client *clients.RedisClient
}

func NewCacheRepo(client *clients.RedisClient) *CacheRepo {
	return &CacheRepo{client: client}
}

func (c *CacheRepo) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return n > 0, nil
}

// Get возвращает значение по ключу. При промахе (nil, false, nil).
func (c *CacheRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, true, nil
}

func (c *CacheRepo) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет ключи одним DEL; отсутствующие ключи не считаются ошибкой.
func (c *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
