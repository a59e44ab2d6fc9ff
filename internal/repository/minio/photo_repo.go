package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// PhotoRepo хранит фотографии товаров в бакете MinIO.
type PhotoRepo struct {
	mc     *minio.Client
	bucket string
}

func NewPhotoRepo(mc *minio.Client, bucket string) *PhotoRepo {
	return &PhotoRepo{
		mc:     mc,
		bucket: bucket,
	}
}

// Upload кладёт фотографию в бакет и возвращает ключ объекта.
func (p *PhotoRepo) Upload(ctx context.Context, photo *domain.Photo) (string, error) {
	bucket := photo.Bucket
	if bucket == "" {
		bucket = p.bucket
	}

	info, err := p.mc.PutObject(ctx, bucket, photo.ObjectKey, bytes.NewReader(photo.Bytes), photo.Size, minio.PutObjectOptions{
		ContentType: photo.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

func (p *PhotoRepo) Delete(ctx context.Context, key string) error {
	if err := p.mc.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
