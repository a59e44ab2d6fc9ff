package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

// UserUseCase отвечает за решение "является ли вызывающий администратором".
type UserUseCase struct {
	userRepo UserRepository
	logger   logger.Logger
}

func NewUserUC(userRepo UserRepository, logger logger.Logger) *UserUseCase {
	return &UserUseCase{userRepo: userRepo, logger: logger}
}

// AuthorizeAdmin возвращает e.ErrUnauthorized, если пользователь не передан,
// e.ErrInvalidUser, если он неизвестен, и e.ErrForbidden, если он не администратор.
func (u *UserUseCase) AuthorizeAdmin(ctx context.Context, userID string) error {
	const op = "UserUseCase.AuthorizeAdmin"

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return e.Wrap(op, e.ErrUnauthorized)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return e.Wrap(op, e.ErrInvalidUser)
		}
		return e.Wrap(op, err)
	}

	if !user.IsAdmin() {
		u.logger.Warnf("non-admin user %s tried to access admin route", userID)
		return e.Wrap(op, e.ErrForbidden)
	}

	return nil
}
