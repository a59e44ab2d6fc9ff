package usecase

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

// Ключи кэша каталога
const (
	latestProductsKey = "latest-product"
	categoriesKey     = "categories"
	allProductsKey    = "all-products"
	productKeyPrefix  = "product-"
	listingKeyPrefix  = "products?"
)

// Ключи кэша заказов и статистики
const (
	allOrdersKey      = "all-orders"
	adminStatsKey     = "admin-stats"
	orderKeyPrefix    = "order-"
	myOrdersKeyPrefix = "my-orders-"
)

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

// readThrough возвращает значение из кэша по key, а при промахе вызывает fetch,
// сохраняет результат в кэш и только затем возвращает его.
// Ошибки кэша не ломают запрос: они логируются, и значение берётся из хранилища.
// Ошибка fetch ничего не кэширует.
func readThrough[T any](
	ctx context.Context,
	cache CacheRepository,
	log logger.Logger,
	key string,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	data, found, err := cache.Get(ctx, key)
	if err != nil {
		log.Warnf("cache get failed, key=%s: %v", key, err)
	}

	if found {
		var cached T
		err := json.Unmarshal(data, &cached)
		if err == nil {
			return cached, nil
		}

		log.Warnf("cache unmarshal failed, key=%s: %v", key, err)
		if err := cache.Delete(ctx, key); err != nil {
			log.Warnf("cache delete failed, key=%s: %v", key, err)
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warnf("cache marshal failed, key=%s: %v", key, err)
		return value, nil
	}

	if err := cache.Set(ctx, key, encoded); err != nil {
		log.Warnf("cache set failed, key=%s: %v", key, err)
	}

	return value, nil
}
