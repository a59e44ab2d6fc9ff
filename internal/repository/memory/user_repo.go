package memory

import (
	"context"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
)

// UserRepo знает только администраторов из конфигурации (ADMIN_IDS).
// Любой другой id считается неизвестным пользователем.
type UserRepo struct {
	admins map[string]struct{}
}

func NewUserRepo(adminIDs []string) *UserRepo {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &UserRepo{admins: admins}
}

func (u *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if _, ok := u.admins[id]; !ok {
		return nil, e.ErrUserNotFound
	}
	return &domain.User{ID: id, Name: id, Role: domain.RoleAdmin}, nil
}
