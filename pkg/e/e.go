package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnknownDriver        = fmt.Errorf("unknown driver")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("please enter all fields")
	ErrInvalidID            = fmt.Errorf("invalid product id")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidStock         = fmt.Errorf("stock must be a non-negative integer")
	ErrNoPhotos             = fmt.Errorf("please add photo")
	ErrTooManyPhotos        = fmt.Errorf("too many photos")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 401 / 403
	ErrUnauthorized = fmt.Errorf("you need to login first")
	ErrInvalidUser  = fmt.Errorf("invalid id")
	ErrForbidden    = fmt.Errorf("you need to be an admin to proceed")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrUserNotFound    = fmt.Errorf("user not found")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
