package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/storefront-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/storefront-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/storefront-backend/internal/infrastructure/minio"
	"github.com/DRSN-tech/storefront-backend/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/storefront-backend/internal/repository/minio"
	"github.com/DRSN-tech/storefront-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/storefront-backend/internal/repository/redis"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/clients"
	"github.com/DRSN-tech/storefront-backend/pkg/closer"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/DRSN-tech/storefront-backend/pkg/postgres"
	"github.com/DRSN-tech/storefront-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App собирает зависимости каталога и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv       *v1Http.Server
	grpcSrv       *v1Grpc.GRPCServer
	orderConsumer *kafka.OrderConsumer

	ctx    context.Context
	cancel context.CancelFunc
}

type storage struct {
	products usecase.ProductRepository
	users    usecase.UserRepository
	tx       usecase.Transactor
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
		ctx:    ctx,
		cancel: cancel,
	}

	if err := a.init(); err != nil {
		cancel()
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		if cerr := a.closer.Close(closeCtx); cerr != nil {
			log.Warnf("partial init cleanup failed: %v", cerr)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	startCtx, cancel := context.WithTimeout(a.ctx, startupTimeout)
	defer cancel()

	store, err := a.initStorage(startCtx)
	if err != nil {
		return err
	}

	cache, err := a.initCache(startCtx)
	if err != nil {
		return err
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(startCtx, minioClient, a.cfg.Minio.BucketName); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	// очистка фотографий переживает отмену a.ctx и прерывается только после ожидания в closer
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	photosInfra := minioInfra.NewMinioInfrastructure(
		s3Repo.NewPhotoRepo(minioClient, a.cfg.Minio.BucketName), a.cfg.Minio, a.logger, cleanupCtx,
	)
	a.closer.Add("photo cleanup", func(ctx context.Context) error {
		defer cleanupCancel()
		return photosInfra.WaitForCleanup(ctx)
	})

	var producer usecase.EventProducer = kafka.NopProducer{}
	if a.cfg.Kafka.Enabled() {
		p := kafka.NewProducer(a.logger, a.cfg.Kafka)
		a.closer.Add("kafka producer", p.Close)
		producer = p
	} else {
		a.logger.Infof("KAFKA_BROKERS is empty, product change events are not published")
	}

	invalidator := usecase.NewInvalidator(cache, a.logger)
	productUC := usecase.NewProductUC(
		store.products,
		store.tx,
		cache,
		invalidator,
		photosInfra,
		producer,
		usecase.CatalogOptions{
			PageSize:    a.cfg.Catalog.ProductsPerPage,
			LatestLimit: a.cfg.Catalog.LatestProductsLimit,
		},
		a.logger,
	)
	userUC := usecase.NewUserUC(store.users, a.logger)

	if a.cfg.Kafka.Enabled() {
		a.orderConsumer = kafka.NewOrderConsumer(a.cfg.Kafka, productUC, a.logger)
		a.closer.Add("order consumer", a.orderConsumer.Close)
	}

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	router := v1Http.NewRouter(chi.NewRouter(), a.logger)
	router.Init(productUC, userUC)
	a.httpSrv = v1Http.NewServer(router.Handler(), a.cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// initStorage выбирает хранилище каталога по CATALOG_DRIVER.
func (a *App) initStorage(ctx context.Context) (*storage, error) {
	if a.cfg.Catalog.CatalogDriver == config.CatalogDriverMemory {
		a.logger.Warnf("using in-memory catalog, data is lost on restart")
		return &storage{
			products: memory.NewProductRepo(),
			users:    memory.NewUserRepo(a.cfg.Catalog.AdminIDs),
			tx:       memory.Transactor{},
		}, nil
	}

	db, err := postgres.Connect(ctx, a.cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddFunc("postgres", db.Close)

	if err := db.RunMigrations(a.logger); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &storage{
		products: pgdb.NewProductRepo(db.Pool),
		users:    pgdb.NewUserRepo(db.Pool),
		tx:       tr.NewPgxTransactor(db.Pool),
	}, nil
}

// initCache выбирает кэш по CACHE_DRIVER.
func (a *App) initCache(ctx context.Context) (usecase.CacheRepository, error) {
	if a.cfg.Catalog.CacheDriver != config.CacheDriverRedis {
		return memory.NewCacheRepo(), nil
	}

	client := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", client.Close)

	if err := client.Ping(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// кэш без TTL: записи прошлого запуска могли пережить изменения каталога
	if err := client.Flush(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return redis.NewCacheRepo(client), nil
}

// Run запускает серверы и ждёт сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	errCh := make(chan error, 3)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("grpc server", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("http server", err)
		}
	}()

	if a.orderConsumer != nil {
		go func() {
			if err := a.orderConsumer.Run(a.ctx); err != nil {
				errCh <- e.Wrap("order consumer", err)
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "fatal error, shutting down")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// консьюмер заказов останавливается до закрытия ресурсов
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}
