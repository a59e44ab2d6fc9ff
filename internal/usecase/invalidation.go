package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

// Invalidator удаляет из кэша ключи, которые могли устареть после изменения данных.
//
// Ключи отфильтрованных выдач (products?...) заранее неизвестны, поэтому каждая
// закэшированная выдача регистрируется через TrackListing и удаляется при любом
// изменении товаров. Реестр живёт в памяти процесса, как и сам кэш.
type Invalidator struct {
	cache  CacheRepository
	logger logger.Logger

	mu       sync.Mutex
	listings map[string]struct{}
}

func NewInvalidator(cache CacheRepository, logger logger.Logger) *Invalidator {
	return &Invalidator{
		cache:    cache,
		logger:   logger,
		listings: make(map[string]struct{}),
	}
}

// TrackListing запоминает ключ отфильтрованной выдачи.
// Вызывается до и после записи выдачи в кэш: если между ними прошла инвалидация,
// повторная регистрация не даёт записи остаться без учёта.
func (i *Invalidator) TrackListing(key string) {
	i.mu.Lock()
	i.listings[key] = struct{}{}
	i.mu.Unlock()
}

// Keys возвращает ровно те ключи, которые затрагивает событие. Реестр выдач не меняется.
func (i *Invalidator) Keys(event InvalidationEvent) []string {
	return i.keys(event, i.trackedListings())
}

func (i *Invalidator) keys(event InvalidationEvent, listings []string) []string {
	var keys []string

	if event.Product {
		keys = append(keys, latestProductsKey, categoriesKey)
		keys = append(keys, listings...)
	}

	for _, id := range event.ProductIDs {
		keys = append(keys, productKey(id))
	}

	if event.Admin {
		keys = append(keys, allProductsKey)
	}

	if event.Order {
		keys = append(keys, allOrdersKey, adminStatsKey)
		if event.OrderID != "" {
			keys = append(keys, orderKeyPrefix+event.OrderID)
		}
		if event.UserID != "" {
			keys = append(keys, myOrdersKeyPrefix+event.UserID)
		}
	}

	return keys
}

// Invalidate синхронно удаляет ключи события. Вызывается после фиксации изменения в хранилище.
// Ошибка удаления логируется и не возвращается: изменение уже зафиксировано.
// Удалённые выдачи снимаются с учёта: следующая запись в кэш зарегистрирует их заново.
func (i *Invalidator) Invalidate(ctx context.Context, event InvalidationEvent) {
	var listings []string
	if event.Product {
		listings = i.drainListings()
	}

	keys := i.keys(event, listings)
	if len(keys) == 0 {
		return
	}

	if err := i.cache.Delete(ctx, keys...); err != nil {
		// выдачи могли остаться в кэше, поэтому возвращаем их в реестр
		for _, key := range listings {
			i.TrackListing(key)
		}
		i.logger.Warnf("cache invalidation failed, keys=%v: %v", keys, err)
		return
	}

	i.logger.Debugf("cache invalidated: %v", keys)
}

func (i *Invalidator) trackedListings() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return sortedKeys(i.listings)
}

// drainListings забирает ключи реестра и заменяет его пустым.
func (i *Invalidator) drainListings() []string {
	i.mu.Lock()
	listings := i.listings
	i.listings = make(map[string]struct{})
	i.mu.Unlock()

	return sortedKeys(listings)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
