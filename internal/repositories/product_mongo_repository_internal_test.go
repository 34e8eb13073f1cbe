package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"productapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoFilter(ProductFilter{}))
	assert.Equal(t, bson.M{"category": "x"}, mongoFilter(ProductFilter{Category: "x"}))
	assert.Equal(t, bson.M{
		"category": "x",
		"name":     bson.M{"$regex": `a\.b\*`, "$options": "i"},
	}, mongoFilter(ProductFilter{Category: "x", NameContains: "a.b*"}))
}

func TestPatchDocument(t *testing.T) {
	now := time.Now()
	name := "n"
	inStock := false

	set := patchDocument(models.ProductPatch{Name: &name, InStock: &inStock}, now)
	assert.Equal(t, bson.M{"updatedAt": now, "name": "n", "inStock": false}, set)
}

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("not-a-hex-id")
	assert.ErrorIs(t, err, ErrProductNotFound)

	oid := primitive.NewObjectID()
	parsed, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)
}

// TestMongoProductRepository_Live runs against a real server when MONGO_URI is set.
func TestMongoProductRepository_Live(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := OpenMongoProductRepository(ctx, uri, "productapi_test", "products_"+primitive.NewObjectID().Hex())
	require.NoError(t, err)
	defer func() {
		_ = repo.coll.Drop(context.Background())
		repo.Close()
	}()
	require.NoError(t, repo.Migrate(ctx))

	a := models.Product{Name: "Alpha", Description: "a", Price: 10, Category: "x", InStock: true}
	b := models.Product{Name: "beta", Description: "b", Price: 20, Category: "y"}
	require.NoError(t, repo.Create(ctx, &a))
	require.NoError(t, repo.Create(ctx, &b))

	page, err := repo.Find(ctx, ProductFilter{Category: "x"}, Page{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, a.ID, page[0].ID)

	found, err := repo.Find(ctx, ProductFilter{NameContains: "BET"}, Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	price := 15.0
	updated, err := repo.UpdateByID(ctx, a.ID, models.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.Name)
	assert.Equal(t, 15.0, updated.Price)

	rows, err := repo.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{{Category: "x", Count: 1}, {Category: "y", Count: 1}}, rows)

	deleted, err := repo.DeleteByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
