package repositories

import (
	"context"
	"errors"

	"productapi/internal/models"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when no product matches the given ID.
var ErrProductNotFound = errors.New("product not found")

// ProductFilter narrows Find and Count. Zero values match everything.
type ProductFilter struct {
	Category     string // exact match
	NameContains string // case-insensitive substring of name
}

// Page selects a window of results. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// ProductRepository defines the interface for product data access.
// Results come back in the store's natural order.
type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteByID(ctx context.Context, id string) (*models.Product, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	Close() error
}

// Migrator is implemented by stores that need schema or index setup.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// newProductID returns a time-ordered UUIDv7, so IDs also sort in creation order.
func newProductID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
