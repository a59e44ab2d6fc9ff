package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/DRSN-tech/storefront-backend/pkg/money"
	"github.com/go-chi/chi/v5"
)

const (
	maxTotalRequestSize = maxPhotoCount*maxFileSize + 1<<20
	maxMemory           = 32 << 20
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// getLatestProducts
//
//	@Summary	Новинки каталога
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	500	{object}	ErrorResponse
//	@Router		/product/latest [get]
func (p *ProductHandler) getLatestProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.GetLatestProducts(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"products": products})
}

// getCategories
//
//	@Summary	Список категорий
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	500	{object}	ErrorResponse
//	@Router		/product/categories [get]
func (p *ProductHandler) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.productUsecase.GetCategories(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"categories": categories})
}

// getAdminProducts
//
//	@Summary	Весь каталог для админки
//	@Tags		admin
//	@Produce	json
//	@Param		id	query		string	true	"ID администратора"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	401	{object}	ErrorResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/product/admin-products [get]
func (p *ProductHandler) getAdminProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.GetAdminProducts(r.Context())
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"products": products})
}

// searchProducts
//
//	@Summary		Поиск товаров
//	@Description	Фильтр по подстроке названия, категории и максимальной цене; сортировка по цене; пагинация
//	@Tags			products
//	@Produce		json
//	@Param			search		query		string	false	"Подстрока названия"
//	@Param			sort		query		string	false	"asc | desc"
//	@Param			category	query		string	false	"Категория"
//	@Param			price		query		string	false	"Максимальная цена"
//	@Param			page		query		int		false	"Страница, с 1"
//	@Success		200			{object}	map[string]interface{}
//	@Failure		400			{object}	ErrorResponse
//	@Router			/product/all [get]
func (p *ProductHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &usecase.SearchProductsReq{
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Category: q.Get("category"),
		Price:    q.Get("price"),
		Page:     q.Get("page"),
	}

	res, err := p.productUsecase.SearchProducts(r.Context(), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"products":  res.Products,
		"totalPage": res.TotalPages,
	})
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	ErrorResponse
//	@Router		/product/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{"product": product})
}

// createProduct
//
//	@Summary		Новый товар
//	@Description	Создаёт товар с фотографиями
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			query		string	true	"ID администратора"
//	@Param			name		formData	string	true	"Название"
//	@Param			category	formData	string	true	"Категория"
//	@Param			price		formData	number	true	"Цена"
//	@Param			stock		formData	int		true	"Остаток"
//	@Param			photos		formData	file	true	"Фотографии (до 5)"
//	@Success		201			{object}	map[string]interface{}
//	@Failure		400			{object}	ErrorResponse
//	@Router			/product/new [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.fail(w, r, err)
		return
	}

	price, err := parseOptionalPrice(r.FormValue("price"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	stock, err := parseOptionalStock(r.FormValue("stock"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	photos, err := parsePhotos(r.MultipartForm.File["photos"])
	if err != nil {
		p.fail(w, r, err)
		return
	}

	req := usecase.NewAddNewProductReq(r.FormValue("name"), r.FormValue("category"), price, stock, photos)
	product, err := p.productUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	p.logger.Infof("product created: id=%d name=%q price=%s", product.ID, product.Name, money.FromCents(product.Price))
	WriteSuccess(w, http.StatusCreated, map[string]any{
		"message": "Product Created Successfully",
		"product": product,
	})
}

// updateProduct
//
//	@Summary		Изменение товара
//	@Description	Все поля необязательны; новые фотографии заменяют старые
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		int		true	"ID товара"
//	@Param			name		formData	string	false	"Название"
//	@Param			category	formData	string	false	"Категория"
//	@Param			price		formData	number	false	"Цена"
//	@Param			stock		formData	int		false	"Остаток"
//	@Param			photos		formData	file	false	"Фотографии (до 5)"
//	@Success		200			{object}	map[string]interface{}
//	@Failure		404			{object}	ErrorResponse
//	@Router			/product/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)
	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.fail(w, r, err)
		return
	}

	price, err := parseOptionalPrice(r.FormValue("price"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	stock, err := parseOptionalStock(r.FormValue("stock"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	photos, err := parsePhotos(r.MultipartForm.File["photos"])
	if err != nil {
		p.fail(w, r, err)
		return
	}

	req := &usecase.UpdateProductReq{
		ID:       id,
		Name:     optionalString(r.MultipartForm, "name"),
		Category: optionalString(r.MultipartForm, "category"),
		Price:    price,
		Stock:    stock,
		Photos:   photos,
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), req)
	if err != nil {
		p.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]any{
		"message": "Product Updated Successfully",
		"product": product,
	})
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	ErrorResponse
//	@Router		/product/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(chi.URLParam(r, "id"))
	if err != nil {
		p.fail(w, r, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.fail(w, r, err)
		return
	}

	p.logger.Infof("product deleted: id=%d", id)
	WriteSuccess(w, http.StatusOK, map[string]any{"message": "Product Deleted Successfully"})
}

// fail логирует ошибку с уровнем по коду ответа и пишет тело ошибки.
func (p *ProductHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		p.logger.Errorf(err, "%s %s", r.Method, r.URL.Path)
	} else {
		p.logger.Warnf("%d %s %s: %v", code, r.Method, r.URL.Path, err)
	}

	WriteError(w, err)
}
