// Package money переводит цены между строковым представлением в рублях и копейками.
package money

import (
	"strings"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// MaxRubles — верхняя граница цены (1 млрд рублей).
const MaxRubles = 1_000_000_000

var hundred = decimal.NewFromInt(100)

// ParseToCents переводит строку вида "599.99" или "600" в копейки.
// Возвращает e.ErrInvalidPrice для пустой, отрицательной, нечисловой или слишком большой цены
// и e.ErrPricePrecision, если знаков после запятой больше двух.
func ParseToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(MaxRubles)) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}

// FromCents возвращает цену в рублях для ответа клиенту.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
