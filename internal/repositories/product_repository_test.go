package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepository(t *testing.T) repositories.ProductRepository {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { repo.Close() })
	return repo
}

// repositoryFactories lists every store the contract tests run against.
func repositoryFactories() map[string]func(t *testing.T) repositories.ProductRepository {
	return map[string]func(t *testing.T) repositories.ProductRepository{
		"memory": func(*testing.T) repositories.ProductRepository {
			return repositories.NewMemoryProductRepository()
		},
		"sqlite": newSQLiteRepository,
	}
}

func seed(t *testing.T, repo repositories.ProductRepository) []models.Product {
	t.Helper()
	products := []models.Product{
		{Name: "Alpha Laptop", Description: "a", Price: 10, Category: "x", InStock: true},
		{Name: "Beta Phone", Description: "b", Price: 20, Category: "y", InStock: false},
		{Name: "Gamma laptop bag", Description: "c", Price: 30, Category: "x", InStock: true},
	}
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
		require.NotEmpty(t, products[i].ID)
	}
	return products
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestProductRepository_Contract(t *testing.T) {
	ctx := context.Background()

	for name, newRepo := range repositoryFactories() {
		t.Run(name, func(t *testing.T) {
			t.Run("FindFilterAndPage", func(t *testing.T) {
				repo := newRepo(t)
				seed(t, repo)

				all, err := repo.Find(ctx, repositories.ProductFilter{}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"Alpha Laptop", "Beta Phone", "Gamma laptop bag"}, names(all))

				page, err := repo.Find(ctx, repositories.ProductFilter{Category: "x"}, repositories.Page{Offset: 0, Limit: 1})
				require.NoError(t, err)
				assert.Equal(t, []string{"Alpha Laptop"}, names(page))

				page, err = repo.Find(ctx, repositories.ProductFilter{Category: "x"}, repositories.Page{Offset: 1, Limit: 1})
				require.NoError(t, err)
				assert.Equal(t, []string{"Gamma laptop bag"}, names(page))

				beyond, err := repo.Find(ctx, repositories.ProductFilter{}, repositories.Page{Offset: 10, Limit: 5})
				require.NoError(t, err)
				assert.Empty(t, beyond)

				total, err := repo.Count(ctx, repositories.ProductFilter{Category: "x"})
				require.NoError(t, err)
				assert.EqualValues(t, 2, total)
			})

			t.Run("NameContainsIsCaseInsensitiveAndLiteral", func(t *testing.T) {
				repo := newRepo(t)
				seed(t, repo)
				require.NoError(t, repo.Create(ctx, &models.Product{Name: "100% Cotton", Description: "d", Category: "z"}))

				found, err := repo.Find(ctx, repositories.ProductFilter{NameContains: "LAPTOP"}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"Alpha Laptop", "Gamma laptop bag"}, names(found))

				found, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "0%"}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"100% Cotton"}, names(found))

				found, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "a_p"}, repositories.Page{})
				require.NoError(t, err)
				assert.Empty(t, found)

				require.NoError(t, repo.Create(ctx, &models.Product{Name: "Éclair Pan", Description: "e", Category: "z"}))
				found, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "éclair"}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"Éclair Pan"}, names(found))

				found, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "PAN"}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"Éclair Pan"}, names(found))
			})

			t.Run("RenamedProductIsFoundByNewName", func(t *testing.T) {
				repo := newRepo(t)
				products := seed(t, repo)

				name := "Über Phone"
				_, err := repo.UpdateByID(ctx, products[1].ID, models.ProductPatch{Name: &name})
				require.NoError(t, err)

				found, err := repo.Find(ctx, repositories.ProductFilter{NameContains: "über"}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, []string{"Über Phone"}, names(found))

				found, err = repo.Find(ctx, repositories.ProductFilter{NameContains: "beta"}, repositories.Page{})
				require.NoError(t, err)
				assert.Empty(t, found)
			})

			t.Run("FindKeepsInsertionOrderOnTimestampTies", func(t *testing.T) {
				repo := newRepo(t)
				at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
				want := make([]string, 0, 20)
				for i := 0; i < 20; i++ {
					p := models.Product{
						Name:        fmt.Sprintf("P%02d", i),
						Description: "d",
						Category:    "x",
						CreatedAt:   at,
						UpdatedAt:   at,
					}
					require.NoError(t, repo.Create(ctx, &p))
					want = append(want, p.Name)
				}

				all, err := repo.Find(ctx, repositories.ProductFilter{}, repositories.Page{})
				require.NoError(t, err)
				assert.Equal(t, want, names(all))

				page, err := repo.Find(ctx, repositories.ProductFilter{}, repositories.Page{Offset: 5, Limit: 5})
				require.NoError(t, err)
				assert.Equal(t, want[5:10], names(page))
			})

			t.Run("GetUpdateDelete", func(t *testing.T) {
				repo := newRepo(t)
				products := seed(t, repo)
				id := products[1].ID

				got, err := repo.GetByID(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, "Beta Phone", got.Name)

				price := 25.5
				inStock := true
				updated, err := repo.UpdateByID(ctx, id, models.ProductPatch{Price: &price, InStock: &inStock})
				require.NoError(t, err)
				assert.Equal(t, id, updated.ID)
				assert.Equal(t, "Beta Phone", updated.Name)
				assert.Equal(t, 25.5, updated.Price)
				assert.True(t, updated.InStock)

				deleted, err := repo.DeleteByID(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, id, deleted.ID)
				assert.Equal(t, 25.5, deleted.Price)

				_, err = repo.GetByID(ctx, id)
				assert.ErrorIs(t, err, repositories.ErrProductNotFound)
				_, err = repo.DeleteByID(ctx, id)
				assert.ErrorIs(t, err, repositories.ErrProductNotFound)
				_, err = repo.UpdateByID(ctx, id, models.ProductPatch{Price: &price})
				assert.ErrorIs(t, err, repositories.ErrProductNotFound)

				total, err := repo.Count(ctx, repositories.ProductFilter{})
				require.NoError(t, err)
				assert.EqualValues(t, 2, total)
			})

			t.Run("CountByCategory", func(t *testing.T) {
				repo := newRepo(t)
				products := seed(t, repo)

				rows, err := repo.CountByCategory(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, []models.CategoryCount{
					{Category: "x", Count: 2},
					{Category: "y", Count: 1},
				}, rows)

				_, err = repo.DeleteByID(ctx, products[1].ID)
				require.NoError(t, err)
				rows, err = repo.CountByCategory(ctx)
				require.NoError(t, err)
				assert.Equal(t, []models.CategoryCount{{Category: "x", Count: 2}}, rows)
			})

			t.Run("IDsAreNotReused", func(t *testing.T) {
				repo := newRepo(t)
				products := seed(t, repo)
				_, err := repo.DeleteByID(ctx, products[0].ID)
				require.NoError(t, err)

				fresh := models.Product{Name: "Delta", Description: "d", Category: "x"}
				require.NoError(t, repo.Create(ctx, &fresh))
				for _, p := range products {
					assert.NotEqual(t, p.ID, fresh.ID)
				}
			})
		})
	}
}
