package usecase

import (
	"strings"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
)

// PRODUCT USECASE

// AddNewProductReq — запрос на добавление нового товара.
// Price и Stock указатели: отсутствие поля отличается от нуля.
type AddNewProductReq struct {
	Name     string         `validate:"required"`
	Category string         `validate:"required"`
	Price    *int64         `validate:"required,gte=0"`
	Stock    *int64         `validate:"required,gte=0"`
	Photos   []ProductPhoto `validate:"required,min=1,max=5"`
}

// UpdateProductReq — частичное обновление товара: nil-поля не меняются.
type UpdateProductReq struct {
	ID       int64
	Name     *string
	Category *string
	Price    *int64
	Stock    *int64
	Photos   []ProductPhoto
}

// ProductPhoto представляет фотографию, загруженную через multipart/form-data.
type ProductPhoto struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// SearchProductsReq — сырые параметры поиска из query string. Любое поле может быть пустым.
type SearchProductsReq struct {
	Search   string
	Sort     string
	Category string
	Price    string
	Page     string
}

// SearchProductsRes — страница результатов поиска.
type SearchProductsRes struct {
	Products   []ProductInfo `json:"products"`
	TotalPages int64         `json:"total_pages"`
}

// ProductInfo — DTO с информацией о товаре. В этом же виде ответ хранится в кэше.
type ProductInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Stock     int64     `json:"stock"`
	Photos    []string  `json:"photos"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvalidationEvent описывает, какие группы ключей кэша устарели после изменения.
type InvalidationEvent struct {
	Product    bool
	ProductIDs []int64
	Admin      bool
	Order      bool
	OrderID    string
	UserID     string
}

// INFRASTRUCTURE

// UploadPhotosReq — запрос на загрузку фотографий товара.
type UploadPhotosReq struct {
	Category string
	Photos   []ProductPhoto
}

// UploadPhotosRes — ключи загруженных объектов в MinIO в порядке исходных фотографий.
type UploadPhotosRes struct {
	PhotoKeys []string
}

type ProductOperation string

const (
	ProductCreated ProductOperation = "created"
	ProductUpdated ProductOperation = "updated"
	ProductDeleted ProductOperation = "deleted"
)

// ProductChangeEvent публикуется в Kafka после успешного изменения каталога.
type ProductChangeEvent struct {
	EventID   string           `json:"event_id"`
	Operation ProductOperation `json:"operation"`
	ProductID int64            `json:"product_id"`
	Product   *ProductInfo     `json:"product,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// MAPPERS

func NewAddNewProductReq(name string, category string, price *int64, stock *int64, photos []ProductPhoto) *AddNewProductReq {
	return &AddNewProductReq{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Price:    price,
		Stock:    stock,
		Photos:   photos,
	}
}

func NewProductPhoto(data []byte, mimeType string, size int64, name string) *ProductPhoto {
	return &ProductPhoto{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadPhotosReq(category string, photos []ProductPhoto) *UploadPhotosReq {
	return &UploadPhotosReq{
		Category: category,
		Photos:   photos,
	}
}

func NewUploadPhotosRes(keys []string) *UploadPhotosRes {
	return &UploadPhotosRes{PhotoKeys: keys}
}

func NewProductInfo(p *domain.Product) *ProductInfo {
	return &ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Stock:     p.Stock,
		Photos:    p.Photos,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewArrProductInfo(products []domain.Product) []ProductInfo {
	result := make([]ProductInfo, 0, len(products))
	for i := range products {
		result = append(result, *NewProductInfo(&products[i]))
	}
	return result
}
