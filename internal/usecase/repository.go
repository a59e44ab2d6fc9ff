package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
)

// ProductRepository — хранилище каталога. Отсутствующий товар — e.ErrProductNotFound.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetByIDForUpdate блокирует строку до конца транзакции из контекста.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	Find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CacheRepository хранит сериализованные ответы по строковому ключу. Записи не истекают.
type CacheRepository interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, photo *domain.Photo) (string, error)
	Delete(ctx context.Context, key string) error
}

// Transactor выполняет fn в одной транзакции хранилища каталога.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
