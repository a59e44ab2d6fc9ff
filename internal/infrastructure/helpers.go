package infrastructure

import (
	"strings"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
)

// GetExtensionFromMIME возвращает расширение файла по MIME-типу фотографии.
// Для неподдерживаемого типа возвращает e.ErrUnsupportedMediaType.
func GetExtensionFromMIME(mime string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	case "image/gif":
		return "gif", nil
	default:
		return "", e.ErrUnsupportedMediaType
	}
}
