package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProduct_NormalizesCategory(t *testing.T) {
	p := NewProduct("  Blue Shirt ", " Clothes ", 1999, 3, []string{"clothes/a.jpg"})

	assert.Equal(t, "Blue Shirt", p.Name)
	assert.Equal(t, "clothes", p.Category)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "laptop", NormalizeCategory("LapTop"))
	assert.Equal(t, "", NormalizeCategory("   "))
}
