package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/repository/memory"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

var errBoom = errors.New("boom")

// spyCache — memory.CacheRepo с записью вызовов.
type spyCache struct {
	*memory.CacheRepo

	mu      sync.Mutex
	deleted []string
	sets    []string
	getErr  error
	setErr  error
}

func newSpyCache() *spyCache {
	return &spyCache{CacheRepo: memory.NewCacheRepo()}
}

func (s *spyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.CacheRepo.Get(ctx, key)
}

func (s *spyCache) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.sets = append(s.sets, key)
	s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}
	return s.CacheRepo.Set(ctx, key, value)
}

func (s *spyCache) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	s.deleted = append(s.deleted, keys...)
	s.mu.Unlock()
	return s.CacheRepo.Delete(ctx, keys...)
}

func (s *spyCache) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *spyCache) has(key string) bool {
	ok, _ := s.CacheRepo.Has(context.Background(), key)
	return ok
}

// countingRepo считает обращения к хранилищу на чтение.
type countingRepo struct {
	*memory.ProductRepo

	mu        sync.Mutex
	reads     int
	createErr error
}

func (c *countingRepo) inc() {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
}

func (c *countingRepo) readCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *countingRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	return c.ProductRepo.Create(ctx, p)
}

func (c *countingRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	c.inc()
	return c.ProductRepo.GetByID(ctx, id)
}

func (c *countingRepo) Find(ctx context.Context, f usecase.ProductFilter, o usecase.FindOptions) ([]domain.Product, error) {
	c.inc()
	return c.ProductRepo.Find(ctx, f, o)
}

func (c *countingRepo) Count(ctx context.Context, f usecase.ProductFilter) (int64, error) {
	c.inc()
	return c.ProductRepo.Count(ctx, f)
}

func (c *countingRepo) Categories(ctx context.Context) ([]string, error) {
	c.inc()
	return c.ProductRepo.Categories(ctx)
}

// fakePhotos выдаёт детерминированные ключи и запоминает очищенные.
type fakePhotos struct {
	mu      sync.Mutex
	n       int
	cleaned []string
	err     error
}

func (f *fakePhotos) UploadPhotos(_ context.Context, req *usecase.UploadPhotosReq) (*usecase.UploadPhotosRes, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(req.Photos))
	for range req.Photos {
		f.n++
		keys = append(keys, fmt.Sprintf("%s/photo-%d.jpg", req.Category, f.n))
	}
	return usecase.NewUploadPhotosRes(keys), nil
}

func (f *fakePhotos) CleanupPhotos(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

func (f *fakePhotos) cleanedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cleaned...)
}

type fakeProducer struct {
	mu     sync.Mutex
	events []usecase.ProductChangeEvent
	err    error
}

func (f *fakeProducer) PublishProductChange(_ context.Context, event *usecase.ProductChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return f.err
}

type fixture struct {
	uc       *usecase.ProductUseCase
	repo     *countingRepo
	cache    *spyCache
	photos   *fakePhotos
	producer *fakeProducer
}

func newFixture() *fixture {
	log := logger.NewSlogLoggerWithWriter(io.Discard, slog.LevelDebug)
	repo := &countingRepo{ProductRepo: memory.NewProductRepo()}
	cache := newSpyCache()
	photos := &fakePhotos{}
	producer := &fakeProducer{}

	uc := usecase.NewProductUC(
		repo,
		memory.Transactor{},
		cache,
		usecase.NewInvalidator(cache, log),
		photos,
		producer,
		usecase.CatalogOptions{PageSize: 8, LatestLimit: 5},
		log,
	)

	return &fixture{uc: uc, repo: repo, cache: cache, photos: photos, producer: producer}
}

func ptr[T any](v T) *T { return &v }

func onePhoto() []usecase.ProductPhoto {
	return []usecase.ProductPhoto{{Data: []byte("img"), MimeType: "image/jpeg", Size: 3, Name: "a.jpg"}}
}

func newProductReq(name, category string, price, stock int64) *usecase.AddNewProductReq {
	return usecase.NewAddNewProductReq(name, category, ptr(price), ptr(stock), onePhoto())
}

// seed создаёт товар в обход usecase, без инвалидации.
func (f *fixture) seed(name, category string, price int64) *domain.Product {
	p, err := f.repo.ProductRepo.Create(context.Background(), domain.NewProduct(name, category, price, 1, []string{"seed.jpg"}))
	if err != nil {
		panic(err)
	}
	return p
}
