package usecase

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/money"
)

// ProductSort — порядок выдачи товаров.
type ProductSort string

const (
	SortDefault   ProductSort = ""       // порядок хранилища (по id)
	SortPriceAsc  ProductSort = "asc"    // по цене, по возрастанию
	SortPriceDesc ProductSort = "desc"   // по цене, по убыванию
	SortNewest    ProductSort = "newest" // по дате создания, новые первыми
)

// ProductFilter — условия отбора товаров. Пустые поля не участвуют в фильтрации.
type ProductFilter struct {
	Search   string // подстрока названия без учёта регистра
	Category string // точное совпадение с нормализованной категорией
	MaxPrice *int64 // цена <= MaxPrice, в копейках
}

// FindOptions — сортировка и окно выборки. Limit == 0 означает "без ограничения".
type FindOptions struct {
	Sort   ProductSort
	Limit  int
	Offset int
}

// ProductQuery — нормализованный поисковый запрос.
type ProductQuery struct {
	Filter ProductFilter
	Sort   ProductSort
	Page   int
	Limit  int
}

// BuildProductQuery превращает непроверенные параметры поиска в ProductQuery.
// Некорректная страница заменяется первой; на некорректную цену возвращается ошибка валидации.
func BuildProductQuery(req *SearchProductsReq, pageSize int) (ProductQuery, error) {
	const op = "BuildProductQuery"

	q := ProductQuery{
		Filter: ProductFilter{
			Search:   strings.TrimSpace(req.Search),
			Category: domain.NormalizeCategory(req.Category),
		},
		Sort:  parseSort(req.Sort),
		Page:  parsePage(req.Page, pageSize),
		Limit: pageSize,
	}

	if strings.TrimSpace(req.Price) != "" {
		maxPrice, err := money.ParseToCents(req.Price)
		if err != nil {
			if !errors.Is(err, e.ErrPricePrecision) {
				err = e.ErrInvalidPrice
			}
			return ProductQuery{}, e.Wrap(op, err)
		}
		q.Filter.MaxPrice = &maxPrice
	}

	return q, nil
}

// Offset — сколько записей пропустить до текущей страницы.
// При переполнении возвращает math.MaxInt: такая страница заведомо пустая.
func (q ProductQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return q.Limit * (q.Page - 1)
}

func (q ProductQuery) FindOptions() FindOptions {
	return FindOptions{
		Sort:   q.Sort,
		Limit:  q.Limit,
		Offset: q.Offset(),
	}
}

// TotalPages считает число страниц по количеству подходящих под фильтр записей.
func (q ProductQuery) TotalPages(total int64) int64 {
	if q.Limit <= 0 || total <= 0 {
		return 0
	}
	limit := int64(q.Limit)
	return (total + limit - 1) / limit
}

// CacheKey — детерминированный ключ кэша для этого запроса.
// Параметры сортируются url.Values.Encode, поэтому порядок в исходном запросе не важен.
func (q ProductQuery) CacheKey() string {
	values := url.Values{}
	if q.Filter.Search != "" {
		values.Set("search", strings.ToLower(q.Filter.Search))
	}
	if q.Filter.Category != "" {
		values.Set("category", q.Filter.Category)
	}
	if q.Filter.MaxPrice != nil {
		values.Set("price", strconv.FormatInt(*q.Filter.MaxPrice, 10))
	}
	if q.Sort != SortDefault {
		values.Set("sort", string(q.Sort))
	}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))

	return listingKeyPrefix + values.Encode()
}

func parseSort(s string) ProductSort {
	switch ProductSort(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortDefault
	}
}

// parsePage ограничивает страницу сверху так, чтобы смещение помещалось в int.
// Число вне диапазона int со знаком плюс считается такой же далёкой страницей.
func parsePage(s string, pageSize int) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && !(errors.Is(err, strconv.ErrRange) && page > 0) {
		return 1
	}
	if page < 1 {
		return 1
	}
	if pageSize > 0 {
		if maxPage := math.MaxInt/pageSize + 1; page > maxPage {
			return maxPage
		}
	}
	return page
}
