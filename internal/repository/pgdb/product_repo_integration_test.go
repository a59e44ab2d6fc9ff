package pgdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront-backend/internal/cfg"
	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	pgdatabase "github.com/DRSN-tech/storefront-backend/pkg/postgres"
	"github.com/DRSN-tech/storefront-backend/pkg/tr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

var errRollback = errors.New("rollback")

// RepoSuite гоняет pgdb-репозитории на настоящем PostgreSQL с применёнными миграциями.
type RepoSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	db          *pgdatabase.PgDatabase
	products    *ProductRepo
	users       *UserRepo
	logger      logger.Logger
	ctx         context.Context
}

func (s *RepoSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = logger.NewSlogLoggerWithWriter(io.Discard, slog.LevelDebug)

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "failed to run postgres container")

	host, err := s.pgContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.pgContainer.MappedPort(s.ctx, "5432/tcp")
	require.NoError(s.T(), err)

	wd, err := os.Getwd()
	require.NoError(s.T(), err)

	dbCfg := &cfg.PGDBCfg{
		Host:           host,
		Port:           port.Port(),
		User:           "user",
		Password:       "password",
		DBName:         "catalog",
		SSLMode:        "disable",
		MaxConns:       4,
		MigrationsPath: filepath.Join(wd, "..", "..", "..", "db", "migrations"),
	}

	for range 10 {
		s.db, err = pgdatabase.Connect(s.ctx, dbCfg)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(s.T(), err, "failed to connect to postgres after retries")
	require.NoError(s.T(), s.db.RunMigrations(s.logger), "failed to apply migrations")

	s.products = NewProductRepo(s.db.Pool)
	s.users = NewUserRepo(s.db.Pool)
}

func (s *RepoSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate postgres container: %v", err)
		}
	}
}

func (s *RepoSuite) SetupTest() {
	_, err := s.db.Pool.Exec(s.ctx, "TRUNCATE TABLE products, users RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "failed to truncate tables")
}

func TestRepoIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" || testing.Short() {
		t.Skip("skipping integration tests: " + skipIntegrationTests)
	}
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) create(name, category string, price int64) *domain.Product {
	created, err := s.products.Create(s.ctx, domain.NewProduct(name, category, price, 10, []string{category + "/a.jpg"}))
	require.NoError(s.T(), err)
	return created
}

func (s *RepoSuite) TestCreateAndGetByID() {
	// given
	photos := []string{"laptop/1.jpg", "laptop/2.jpg"}

	// when
	created, err := s.products.Create(s.ctx, domain.NewProduct("ThinkPad X1", "laptop", 15000000, 3, photos))

	// then
	s.Require().NoError(err)
	s.Equal(int64(1), created.ID)
	s.False(created.CreatedAt.IsZero())
	s.Equal(created.CreatedAt, created.UpdatedAt)

	got, err := s.products.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("ThinkPad X1", got.Name)
	s.Equal("laptop", got.Category)
	s.Equal(int64(15000000), got.Price)
	s.Equal(int64(3), got.Stock)
	s.Equal(photos, got.Photos)
}

func (s *RepoSuite) TestGetByIDNotFound() {
	// when
	_, err := s.products.GetByID(s.ctx, 42)

	// then
	s.ErrorIs(err, e.ErrProductNotFound)
}

func (s *RepoSuite) TestFindCountAndCategories() {
	// given
	s.create("Alpha Phone", "phone", 30000)
	s.create("Beta Phone", "phone", 10000)
	s.create("Gamma Laptop", "laptop", 20000)
	s.create("Delta Phone", "phone", 20000)
	maxPrice := int64(20000)

	tests := []struct {
		name      string
		filter    usecase.ProductFilter
		opts      usecase.FindOptions
		wantNames []string
	}{
		{
			name:      "default order by id",
			wantNames: []string{"Alpha Phone", "Beta Phone", "Gamma Laptop", "Delta Phone"},
		},
		{
			name:      "case-insensitive search",
			filter:    usecase.ProductFilter{Search: "PHONE"},
			wantNames: []string{"Alpha Phone", "Beta Phone", "Delta Phone"},
		},
		{
			name:      "inclusive max price ascending",
			filter:    usecase.ProductFilter{MaxPrice: &maxPrice},
			opts:      usecase.FindOptions{Sort: usecase.SortPriceAsc},
			wantNames: []string{"Beta Phone", "Gamma Laptop", "Delta Phone"},
		},
		{
			name:      "descending ties broken by id",
			filter:    usecase.ProductFilter{Category: "phone"},
			opts:      usecase.FindOptions{Sort: usecase.SortPriceDesc},
			wantNames: []string{"Alpha Phone", "Delta Phone", "Beta Phone"},
		},
		{
			name:      "window",
			opts:      usecase.FindOptions{Limit: 2, Offset: 2},
			wantNames: []string{"Gamma Laptop", "Delta Phone"},
		},
		{
			name:      "newest first",
			opts:      usecase.FindOptions{Sort: usecase.SortNewest, Limit: 2},
			wantNames: []string{"Delta Phone", "Gamma Laptop"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			// when
			found, err := s.products.Find(s.ctx, tt.filter, tt.opts)

			// then
			s.Require().NoError(err)
			names := make([]string, 0, len(found))
			for _, p := range found {
				names = append(names, p.Name)
			}
			s.Equal(tt.wantNames, names)
		})
	}

	count, err := s.products.Count(s.ctx, usecase.ProductFilter{Category: "phone"})
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	categories, err := s.products.Categories(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"laptop", "phone"}, categories)
}

func (s *RepoSuite) TestFindTreatsWildcardsLiterally() {
	// given
	s.create("100% cotton", "shirt", 1000)
	s.create("1000 cotton", "shirt", 1000)
	s.create("snake_case", "shirt", 1000)
	s.create("snakeXcase", "shirt", 1000)

	// when
	percent, err := s.products.Find(s.ctx, usecase.ProductFilter{Search: "100%"}, usecase.FindOptions{})
	s.Require().NoError(err)
	underscore, err := s.products.Find(s.ctx, usecase.ProductFilter{Search: "e_c"}, usecase.FindOptions{})
	s.Require().NoError(err)

	// then
	s.Require().Len(percent, 1)
	s.Equal("100% cotton", percent[0].Name)
	s.Require().Len(underscore, 1)
	s.Equal("snake_case", underscore[0].Name)
}

func (s *RepoSuite) TestFindEmptyResultIsNotNil() {
	// when
	found, err := s.products.Find(s.ctx, usecase.ProductFilter{Category: "absent"}, usecase.FindOptions{})

	// then
	s.Require().NoError(err)
	s.NotNil(found)
	s.Empty(found)
}

func (s *RepoSuite) TestUpdate() {
	// given
	created := s.create("Old", "phone", 1000)
	changed := *created
	changed.Name = "New"
	changed.Price = 2500
	changed.Photos = []string{"phone/new.jpg"}

	// when
	updated, err := s.products.Update(s.ctx, &changed)

	// then
	s.Require().NoError(err)
	s.Equal("New", updated.Name)
	s.Equal(int64(2500), updated.Price)
	s.Equal([]string{"phone/new.jpg"}, updated.Photos)
	s.True(updated.CreatedAt.Equal(created.CreatedAt))
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *RepoSuite) TestUpdateNotFound() {
	// when
	_, err := s.products.Update(s.ctx, &domain.Product{ID: 7, Name: "x", Category: "x", Photos: []string{"x/1.jpg"}})

	// then
	s.ErrorIs(err, e.ErrProductNotFound)
}

func (s *RepoSuite) TestDelete() {
	// given
	created := s.create("Doomed", "phone", 1000)

	// when
	err := s.products.Delete(s.ctx, created.ID)

	// then
	s.Require().NoError(err)
	_, err = s.products.GetByID(s.ctx, created.ID)
	s.ErrorIs(err, e.ErrProductNotFound)
	s.ErrorIs(s.products.Delete(s.ctx, created.ID), e.ErrProductNotFound)
}

func (s *RepoSuite) TestTransactorRollsBack() {
	// given
	created := s.create("Locked", "phone", 1000)
	transactor := tr.NewPgxTransactor(s.db.Pool)

	// when
	err := transactor.WithinTx(s.ctx, func(ctx context.Context) error {
		p, err := s.products.GetByIDForUpdate(ctx, created.ID)
		if err != nil {
			return err
		}
		p.Name = "Renamed"
		if _, err := s.products.Update(ctx, p); err != nil {
			return err
		}
		return errRollback
	})

	// then
	s.ErrorIs(err, errRollback)
	got, err := s.products.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Locked", got.Name)
}

func (s *RepoSuite) TestTransactorCommits() {
	// given
	created := s.create("Locked", "phone", 1000)
	transactor := tr.NewPgxTransactor(s.db.Pool)

	// when
	err := transactor.WithinTx(s.ctx, func(ctx context.Context) error {
		p, err := s.products.GetByIDForUpdate(ctx, created.ID)
		if err != nil {
			return err
		}
		p.Stock = 0
		_, err = s.products.Update(ctx, p)
		return err
	})

	// then
	s.Require().NoError(err)
	got, err := s.products.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), got.Stock)
}

func (s *RepoSuite) TestUserGetByID() {
	// given
	_, err := s.db.Pool.Exec(s.ctx,
		"INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)",
		"u-admin", "Admin", "admin@example.com", "admin",
		"u-user", "User", "user@example.com", "user",
	)
	s.Require().NoError(err)

	// when
	admin, err := s.users.GetByID(s.ctx, "u-admin")
	s.Require().NoError(err)
	user, err := s.users.GetByID(s.ctx, "u-user")
	s.Require().NoError(err)
	_, missingErr := s.users.GetByID(s.ctx, "nobody")

	// then
	s.True(admin.IsAdmin())
	s.Equal("Admin", admin.Name)
	s.False(user.IsAdmin())
	assert.ErrorIs(s.T(), missingErr, e.ErrUserNotFound)
}
