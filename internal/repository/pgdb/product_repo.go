package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = "id, name, category, price, stock, photos, created_at, updated_at"

// ProductRepo реализует хранилище каталога поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// Create вставляет товар; id и временные метки назначает база.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, category, price, stock, photos)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	rows, err := conn(ctx, p.pool).Query(ctx, query,
		product.Name, product.Category, product.Price, product.Stock, product.Photos,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return collectOne(rows)
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rows, err := conn(ctx, p.pool).Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return collectOne(rows)
}

// GetByIDForUpdate блокирует строку товара; вызывать внутри транзакции.
func (p *ProductRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	rows, err := conn(ctx, p.pool).Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return collectOne(rows)
}

// Find возвращает товары, подходящие под фильтр, в заданном порядке и окне.
func (p *ProductRepo) Find(ctx context.Context, filter usecase.ProductFilter, opts usecase.FindOptions) ([]domain.Product, error) {
	where, args := buildWhere(filter)
	window, args := buildWindow(opts, args)
	query := `SELECT ` + productColumns + ` FROM products` + where + buildOrderBy(opts.Sort) + window

	rows, err := conn(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.ProductsToEntities(models), nil
}

// Count считает товары по фильтру без учёта окна выборки.
func (p *ProductRepo) Count(ctx context.Context, filter usecase.ProductFilter) (int64, error) {
	where, args := buildWhere(filter)
	query := `SELECT COUNT(*) FROM products` + where

	var total int64
	if err := conn(ctx, p.pool).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return total, nil
}

// Categories возвращает различные категории в алфавитном порядке.
func (p *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, p.pool).Query(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return categories, nil
}

// Update перезаписывает изменяемые поля товара и обновляет updated_at.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, category = $3, price = $4, stock = $5, photos = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	rows, err := conn(ctx, p.pool).Query(ctx, query,
		product.ID, product.Name, product.Category, product.Price, product.Stock, product.Photos,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return collectOne(rows)
}

func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := conn(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// collectOne читает ровно одну строку товара; без строки возвращает e.ErrProductNotFound.
func collectOne(rows pgx.Rows) (*domain.Product, error) {
	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.ProductToEntity(&model), nil
}
