package usecase

import "context"

type PhotosInfra interface {
	UploadPhotos(ctx context.Context, req *UploadPhotosReq) (*UploadPhotosRes, error)
	CleanupPhotos(keys []string)
}

type EventProducer interface {
	PublishProductChange(ctx context.Context, event *ProductChangeEvent) error
}
