package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]domain.User
	err   error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

func TestUserUseCase_AuthorizeAdmin(t *testing.T) {
	users := map[string]domain.User{
		"admin-1": {ID: "admin-1", Name: "Ann", Role: domain.RoleAdmin},
		"user-1":  {ID: "user-1", Name: "Bob", Role: domain.RoleUser},
	}

	tests := []struct {
		name    string
		repo    *fakeUserRepo
		id      string
		wantErr error
	}{
		{name: "admin", repo: &fakeUserRepo{users: users}, id: "admin-1"},
		{name: "admin with spaces", repo: &fakeUserRepo{users: users}, id: " admin-1 "},
		{name: "no id", repo: &fakeUserRepo{users: users}, id: "", wantErr: e.ErrUnauthorized},
		{name: "unknown id", repo: &fakeUserRepo{users: users}, id: "ghost", wantErr: e.ErrInvalidUser},
		{name: "regular user", repo: &fakeUserRepo{users: users}, id: "user-1", wantErr: e.ErrForbidden},
		{name: "store failure", repo: &fakeUserRepo{err: errBoom}, id: "admin-1", wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			uc := usecase.NewUserUC(tt.repo, logger.NewSlogLoggerWithWriter(io.Discard, slog.LevelDebug))

			// when
			err := uc.AuthorizeAdmin(context.Background(), tt.id)

			// then
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
