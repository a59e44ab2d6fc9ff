package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
)

type ProductUC interface {
	GetLatestProducts(ctx context.Context) ([]ProductInfo, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetAdminProducts(ctx context.Context) ([]ProductInfo, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	SearchProducts(ctx context.Context, req *SearchProductsReq) (*SearchProductsRes, error)
	CreateProduct(ctx context.Context, req *AddNewProductReq) (*ProductInfo, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
	HandleOrderEvent(ctx context.Context, event *domain.OrderEvent) error
}

type UserUC interface {
	AuthorizeAdmin(ctx context.Context, userID string) error
}
