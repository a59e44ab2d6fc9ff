package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
)

// ProductRepo — хранилище каталога в памяти для локального запуска и тестов.
// Семантика фильтров и сортировок совпадает с pgdb.ProductRepo.
type ProductRepo struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	nextID   int64
	now      func() time.Time
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		products: make(map[int64]domain.Product),
		nextID:   1,
		now:      time.Now,
	}
}

func (r *ProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := clone(*product)
	created.ID = r.nextID
	created.CreatedAt = r.now().UTC()
	created.UpdatedAt = created.CreatedAt
	r.products[created.ID] = created
	r.nextID++

	out := clone(created)
	return &out, nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	out := clone(product)
	return &out, nil
}

func (r *ProductRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Find(_ context.Context, filter usecase.ProductFilter, opts usecase.FindOptions) ([]domain.Product, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	sortProducts(matched, opts.Sort)

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []domain.Product{}, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	return matched, nil
}

func (r *ProductRepo) Count(_ context.Context, filter usecase.ProductFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.match(filter))), nil
}

func (r *ProductRepo) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range r.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	slices.Sort(categories)

	return categories, nil
}

func (r *ProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	updated := clone(*product)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.now().UTC()
	r.products[updated.ID] = updated

	out := clone(updated)
	return &out, nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return e.ErrProductNotFound
	}
	delete(r.products, id)

	return nil
}

// match должен вызываться под блокировкой.
func (r *ProductRepo) match(filter usecase.ProductFilter) []domain.Product {
	search := strings.ToLower(filter.Search)

	result := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		result = append(result, clone(p))
	}

	return result
}

func sortProducts(products []domain.Product, sort usecase.ProductSort) {
	slices.SortStableFunc(products, func(a, b domain.Product) int {
		switch sort {
		case usecase.SortPriceAsc:
			if a.Price != b.Price {
				return cmpInt64(a.Price, b.Price)
			}
		case usecase.SortPriceDesc:
			if a.Price != b.Price {
				return cmpInt64(b.Price, a.Price)
			}
		case usecase.SortNewest:
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmpInt64(b.ID, a.ID)
		}
		return cmpInt64(a.ID, b.ID)
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func clone(p domain.Product) domain.Product {
	p.Photos = slices.Clone(p.Photos)
	return p
}
