package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CatalogOptions — неизменяемые параметры каталога.
type CatalogOptions struct {
	PageSize    int // товаров на странице поиска
	LatestLimit int // товаров в выдаче "новинки"
}

// ProductUseCase реализует чтение каталога через кэш и изменение каталога с инвалидацией кэша.
type ProductUseCase struct {
	productRepo ProductRepository
	tx          Transactor
	cache       CacheRepository
	invalidator *Invalidator
	photosInfra PhotosInfra
	producer    EventProducer
	validate    *validator.Validate
	opts        CatalogOptions
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	tx Transactor,
	cache CacheRepository,
	invalidator *Invalidator,
	photosInfra PhotosInfra,
	producer EventProducer,
	opts CatalogOptions,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		tx:          tx,
		cache:       cache,
		invalidator: invalidator,
		photosInfra: photosInfra,
		producer:    producer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		opts:        opts,
		logger:      logger,
	}
}

// GetLatestProducts возвращает последние добавленные товары.
func (p *ProductUseCase) GetLatestProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "ProductUseCase.GetLatestProducts"

	products, err := readThrough(ctx, p.cache, p.logger, latestProductsKey, func(ctx context.Context) ([]ProductInfo, error) {
		return p.find(ctx, ProductFilter{}, FindOptions{Sort: SortNewest, Limit: p.opts.LatestLimit})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// GetCategories возвращает список различных категорий.
func (p *ProductUseCase) GetCategories(ctx context.Context) ([]string, error) {
	const op = "ProductUseCase.GetCategories"

	categories, err := readThrough(ctx, p.cache, p.logger, categoriesKey, p.productRepo.Categories)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// GetAdminProducts возвращает весь каталог для админки.
func (p *ProductUseCase) GetAdminProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "ProductUseCase.GetAdminProducts"

	products, err := readThrough(ctx, p.cache, p.logger, allProductsKey, func(ctx context.Context) ([]ProductInfo, error) {
		return p.find(ctx, ProductFilter{}, FindOptions{})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// GetProduct возвращает товар по id. Отсутствующий товар не кэшируется.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := readThrough(ctx, p.cache, p.logger, productKey(id), func(ctx context.Context) (*ProductInfo, error) {
		pr, err := p.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return NewProductInfo(pr), nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// закэшированный null тоже считается "не найдено"
	if product == nil {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	return product, nil
}

// SearchProducts ищет товары по фильтру, сортирует и отдаёт страницу вместе с общим числом страниц.
func (p *ProductUseCase) SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error) {
	const op = "ProductUseCase.SearchProducts"

	query, err := BuildProductQuery(req, p.opts.PageSize)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	key := query.CacheKey()
	p.invalidator.TrackListing(key)

	res, err := readThrough(ctx, p.cache, p.logger, key, func(ctx context.Context) (*SearchProductsRes, error) {
		return p.search(ctx, query)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	p.invalidator.TrackListing(key)

	return res, nil
}

// CreateProduct загружает фотографии, сохраняет товар и сбрасывает зависящие от каталога ключи кэша.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *AddNewProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	uploaded, err := p.uploadPhotos(ctx, req.Category, req.Photos)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(req.Name, req.Category, *req.Price, *req.Stock, uploaded.PhotoKeys))
	if err != nil {
		p.logger.Warnf("Cleaning up orphaned photos after insert failure. product_name: %s, error: %v", req.Name, e.Wrap(op, err))
		p.photosInfra.CleanupPhotos(uploaded.PhotoKeys)
		return nil, e.Wrap(op, err)
	}

	p.invalidator.Invalidate(ctx, InvalidationEvent{Product: true, Admin: true})

	info := NewProductInfo(product)
	p.publish(ctx, ProductCreated, product.ID, info)

	return info, nil
}

// UpdateProduct применяет частичное обновление. Если пришли новые фото, старые удаляются из хранилища
// после фиксации изменения.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := validatePatch(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	existing, err := p.productRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var newKeys []string
	if len(req.Photos) > 0 {
		category := existing.Category
		if req.Category != nil {
			category = *req.Category
		}
		uploaded, err := p.uploadPhotos(ctx, category, req.Photos)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		newKeys = uploaded.PhotoKeys
	}

	var (
		updated *domain.Product
		oldKeys []string
	)
	err = p.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		if newKeys != nil {
			oldKeys = product.Photos
		}
		applyPatch(product, req, newKeys)

		updated, err = p.productRepo.Update(ctx, product)
		return err
	})
	if err != nil {
		if len(newKeys) > 0 {
			p.logger.Warnf("Cleaning up new photos after update failure. product_id: %d, error: %v", req.ID, e.Wrap(op, err))
			p.photosInfra.CleanupPhotos(newKeys)
		}
		return nil, e.Wrap(op, err)
	}

	p.invalidator.Invalidate(ctx, InvalidationEvent{Product: true, ProductIDs: []int64{updated.ID}, Admin: true})

	if len(oldKeys) > 0 {
		p.photosInfra.CleanupPhotos(oldKeys)
	}

	info := NewProductInfo(updated)
	p.publish(ctx, ProductUpdated, updated.ID, info)

	return info, nil
}

// DeleteProduct удаляет товар и его фотографии.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	var photos []string
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := p.productRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		photos = product.Photos

		return p.productRepo.Delete(ctx, id)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidator.Invalidate(ctx, InvalidationEvent{Product: true, ProductIDs: []int64{id}, Admin: true})
	p.photosInfra.CleanupPhotos(photos)
	p.publish(ctx, ProductDeleted, id, nil)

	return nil
}

// HandleOrderEvent сбрасывает кэш, зависящий от остатков и заказов.
func (p *ProductUseCase) HandleOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	if event == nil || event.OrderID == "" {
		return e.Wrap("ProductUseCase.HandleOrderEvent", e.ErrMissingFields)
	}

	p.invalidator.Invalidate(ctx, InvalidationEvent{
		Product:    true,
		ProductIDs: event.ProductIDs,
		Admin:      true,
		Order:      true,
		OrderID:    event.OrderID,
		UserID:     event.UserID,
	})

	return nil
}

// search выполняет оконный запрос и подсчёт по тому же фильтру параллельно.
func (p *ProductUseCase) search(ctx context.Context, query ProductQuery) (*SearchProductsRes, error) {
	var (
		products []ProductInfo
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = p.find(gctx, query.Filter, query.FindOptions())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = p.productRepo.Count(gctx, query.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SearchProductsRes{
		Products:   products,
		TotalPages: query.TotalPages(total),
	}, nil
}

func (p *ProductUseCase) find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]ProductInfo, error) {
	products, err := p.productRepo.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return NewArrProductInfo(products), nil
}

// uploadPhotos сохраняет фотографии товара в MinIO.
func (p *ProductUseCase) uploadPhotos(ctx context.Context, category string, photos []ProductPhoto) (*UploadPhotosRes, error) {
	return p.photosInfra.UploadPhotos(ctx, NewUploadPhotosReq(domain.NormalizeCategory(category), photos))
}

// publish отправляет событие изменения каталога. Ошибка только логируется.
func (p *ProductUseCase) publish(ctx context.Context, operation ProductOperation, id int64, info *ProductInfo) {
	event := &ProductChangeEvent{
		EventID:   uuid.NewString(),
		Operation: operation,
		ProductID: id,
		Product:   info,
		Timestamp: time.Now().UTC(),
	}

	if err := p.producer.PublishProductChange(ctx, event); err != nil {
		p.logger.Warnf("Failed to publish product change event. product_id: %d, operation: %s: %v", id, operation, err)
	}
}

// validateProduct проверяет запрос на создание товара. Фото проверяются первыми:
// без них остальные поля не важны.
func (p *ProductUseCase) validateProduct(req *AddNewProductReq) error {
	if len(req.Photos) == 0 {
		return e.ErrNoPhotos
	}

	err := p.validate.Struct(req)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	for _, fe := range vErrs {
		switch {
		case fe.Field() == "Photos" && fe.Tag() == "max":
			return e.ErrTooManyPhotos
		case fe.Field() == "Price" && fe.Tag() == "gte":
			return e.ErrInvalidPrice
		case fe.Field() == "Stock" && fe.Tag() == "gte":
			return e.ErrInvalidStock
		}
	}

	return e.Wrap(vErrs[0].Field(), e.ErrMissingFields)
}

func validatePatch(req *UpdateProductReq) error {
	switch {
	case req.ID <= 0:
		return e.ErrInvalidID
	case req.Price != nil && *req.Price < 0:
		return e.ErrInvalidPrice
	case req.Stock != nil && *req.Stock < 0:
		return e.ErrInvalidStock
	case len(req.Photos) > maxPhotos:
		return e.ErrTooManyPhotos
	}

	return nil
}

const maxPhotos = 5

// applyPatch переносит заданные поля запроса в товар.
func applyPatch(product *domain.Product, req *UpdateProductReq, photos []string) {
	if req.Name != nil && *req.Name != "" {
		product.Name = *req.Name
	}
	if req.Category != nil && domain.NormalizeCategory(*req.Category) != "" {
		product.Category = domain.NormalizeCategory(*req.Category)
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if photos != nil {
		product.Photos = photos
	}
}
