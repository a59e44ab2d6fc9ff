package converter

import "github.com/DRSN-tech/storefront-backend/internal/domain"

// ProductToEntity преобразует запись products в доменную сущность.
func ProductToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:        model.ID,
		Name:      model.Name,
		Category:  model.Category,
		Price:     model.Price,
		Stock:     model.Stock,
		Photos:    model.Photos,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func ProductsToEntities(models []ProductModel) []domain.Product {
	result := make([]domain.Product, 0, len(models))
	for i := range models {
		result = append(result, *ProductToEntity(&models[i]))
	}
	return result
}

func UserToEntity(model *UserModel) *domain.User {
	return &domain.User{
		ID:   model.ID,
		Name: model.Name,
		Role: domain.Role(model.Role),
	}
}
