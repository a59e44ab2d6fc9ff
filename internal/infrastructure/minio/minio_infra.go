package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/infrastructure"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/jitter"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

// MinioInfrastructure управляет загрузкой и очисткой фотографий товаров в MinIO.
type MinioInfrastructure struct {
	photoRepo   usecase.ImageRepository
	bucket      string
	uploadLimit int
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup

	retryBase time.Duration
	retryMax  time.Duration
}

func NewMinioInfrastructure(photoRepo usecase.ImageRepository, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	limit := cfg.UploadPhotosLimit
	if limit <= 0 {
		limit = 1
	}

	return &MinioInfrastructure{
		photoRepo:   photoRepo,
		bucket:      cfg.BucketName,
		uploadLimit: limit,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		retryBase:   time.Second,
		retryMax:    8 * time.Second,
	}
}

// UploadPhotos загружает фотографии товара параллельно, не более uploadLimit одновременно.
// Ключи возвращаются в порядке исходных фотографий. При первой ошибке остальные загрузки
// отменяются, а уже загруженные объекты удаляются в фоне.
func (m *MinioInfrastructure) UploadPhotos(ctx context.Context, req *usecase.UploadPhotosReq) (*usecase.UploadPhotosRes, error) {
	const op = "MinioInfrastructure.UploadPhotos"

	keys := make([]string, len(req.Photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.uploadLimit)
	for i, photo := range req.Photos {
		g.Go(func() error {
			ext, err := infrastructure.GetExtensionFromMIME(photo.MimeType)
			if err != nil {
				return fmt.Errorf("photo %q (%s): %w", photo.Name, photo.MimeType, err)
			}

			id := uuid.NewString()
			objKey := fmt.Sprintf("%s/%s.%s", req.Category, id, ext)

			key, err := m.photoRepo.Upload(gctx, domain.NewPhoto(id, m.bucket, objKey, photo.Data, photo.Size, photo.MimeType))
			if err != nil {
				return fmt.Errorf("upload %q failed: %w", photo.Name, err)
			}

			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.CleanupPhotos(uploadedOnly(keys))
		return nil, e.Wrap(op, err)
	}

	return usecase.NewUploadPhotosRes(keys), nil
}

// CleanupPhotos запускает фоновое удаление указанных объектов.
func (m *MinioInfrastructure) CleanupPhotos(keys []string) {
	if len(keys) == 0 {
		return
	}

	m.wg.Add(1)
	go m.cleanup(keys)
}

// cleanup удаляет объекты с экспоненциальной задержкой и jitter между попытками.
func (m *MinioInfrastructure) cleanup(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanup"

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	m.logger.Debugf("%s: removing %d photos", op, len(keys))

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.photoRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(err, "%s: giving up on key=%s", op, key)
				break
			}

			select {
			case <-time.After(jitter.ExponentialBackoff(m.retryBase, m.retryMax, attempt, jitter.DefaultJitter)):
			case <-ctx.Done():
				m.logger.Warnf("%s: interrupted by shutdown, key=%s", op, key)
				return
			}
		}
	}
}

// WaitForCleanup ждёт завершения фоновых очисток, но не дольше контекста остановки.
func (m *MinioInfrastructure) WaitForCleanup(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", ctx.Err())
	}
}

func uploadedOnly(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
