package domain

// Photo описывает фотографию товара, которая хранится в S3
type Photo struct {
	ID          string // uuid
	Bucket      string
	ObjectKey   string
	Bytes       []byte
	Size        int64
	ContentType string // Example: "image/jpeg"
}

func NewPhoto(id string, bucket string, objectKey string, bytes []byte, size int64, contentType string) *Photo {
	return &Photo{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       bytes,
		Size:        size,
		ContentType: contentType,
	}
}
