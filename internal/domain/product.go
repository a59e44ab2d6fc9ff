package domain

import (
	"strings"
	"time"
)

// Product описывает товар каталога
type Product struct {
	ID        int64
	Name      string
	Category  string // всегда в нижнем регистре
	Price     int64  // Цена хранится в копейках
	Stock     int64
	Photos    []string // ключи объектов в хранилище фотографий
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProduct(name string, category string, price int64, stock int64, photos []string) *Product {
	return &Product{
		Name:     strings.TrimSpace(name),
		Category: NormalizeCategory(category),
		Price:    price,
		Stock:    stock,
		Photos:   photos,
	}
}

// NormalizeCategory приводит категорию к виду, в котором она хранится и сравнивается.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
