package pgdb

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere переводит фильтр в условие WHERE с позиционными параметрами.
// Возвращает пустую строку, если фильтр пустой.
func buildWhere(filter usecase.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Search != "" {
		args = append(args, likeEscaper.Replace(filter.Search))
		conds = append(conds, fmt.Sprintf(`name ILIKE '%%' || $%d || '%%' ESCAPE '\'`, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildOrderBy — id всегда последний, чтобы страницы не пересекались при равных ценах.
func buildOrderBy(sort usecase.ProductSort) string {
	switch sort {
	case usecase.SortPriceAsc:
		return " ORDER BY price ASC, id ASC"
	case usecase.SortPriceDesc:
		return " ORDER BY price DESC, id ASC"
	case usecase.SortNewest:
		return " ORDER BY created_at DESC, id DESC"
	default:
		return " ORDER BY id ASC"
	}
}

// buildWindow добавляет LIMIT/OFFSET, продолжая нумерацию параметров.
func buildWindow(opts usecase.FindOptions, args []any) (string, []any) {
	var sb strings.Builder
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return sb.String(), args
}
