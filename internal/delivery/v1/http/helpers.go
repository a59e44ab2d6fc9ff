package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/money"
	"github.com/jimlawless/whereami"
)

const (
	maxPhotoCount = 5
	maxFileSize   = 5 << 20
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Success: false, Message: message}
}

// ToHTTPResponse сопоставляет ошибку слоя usecase с кодом ответа и сообщением для клиента.
// Неизвестные ошибки скрываются за 500.
func ToHTTPResponse(err error) (int, string) {
	badRequest := []error{
		e.ErrStatusBadRequest,
		e.ErrExpectedMultipart,
		e.ErrMissingFields,
		e.ErrInvalidID,
		e.ErrInvalidPrice,
		e.ErrPricePrecision,
		e.ErrInvalidStock,
		e.ErrNoPhotos,
		e.ErrTooManyPhotos,
		e.ErrFileTooLarge,
		e.ErrUnsupportedMediaType,
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrInvalidUser):
		return http.StatusUnauthorized, e.ErrInvalidUser.Error()
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, e.ErrForbidden.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	writeJSON(w, code, NewErrorResponse(msg))
}

// WriteSuccess отдаёт {"success": true, ...payload}.
func WriteSuccess(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}

	return nil
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(raw, e.ErrInvalidID)
	}
	return id, nil
}

// parseOptionalPrice разбирает цену из формы. Для пустого значения nil.
func parseOptionalPrice(raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	cents, err := money.ParseToCents(raw)
	if err != nil {
		return nil, err
	}
	return &cents, nil
}

// parseOptionalStock разбирает остаток из формы. Для пустого значения nil.
func parseOptionalStock(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	stock, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || stock < 0 {
		return nil, e.Wrap(raw, e.ErrInvalidStock)
	}
	return &stock, nil
}

func optionalString(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}

	v := strings.TrimSpace(values[0])
	if v == "" {
		return nil
	}
	return &v
}

// parsePhotos читает файлы формы. Пустой список не ошибка: обязательность решает usecase.
func parsePhotos(files []*multipart.FileHeader) ([]usecase.ProductPhoto, error) {
	if len(files) > maxPhotoCount {
		return nil, e.ErrTooManyPhotos
	}

	photos := make([]usecase.ProductPhoto, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *usecase.NewProductPhoto(data, mimeType, int64(len(data)), fh.Filename))
	}
	return photos, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
