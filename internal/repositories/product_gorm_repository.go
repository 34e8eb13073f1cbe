package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"productapi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// scoped builds a query over products restricted by filter.
func (r *GORMProductRepository) scoped(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.NameContains != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.NameContains)) + "%"
		q = q.Where(`name_lower LIKE ? ESCAPE '\'`, pattern)
	}
	return q
}

// Migrate creates or updates the products table.
func (r *GORMProductRepository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}
	// Backfill rows written before name_lower existed. SQL LOWER may only fold ASCII.
	err := db.Model(&models.Product{}).
		Where("name_lower IS NULL OR name_lower = ''").
		UpdateColumn("name_lower", gorm.Expr("LOWER(name)")).Error
	if err != nil {
		return fmt.Errorf("failed to backfill name_lower: %w", err)
	}
	return nil
}

// Find retrieves the products matching filter, ordered by creation. IDs are
// UUIDv7, so they break created_at ties in insertion order.
func (r *GORMProductRepository) Find(ctx context.Context, filter ProductFilter, page Page) ([]models.Product, error) {
	q := r.scoped(ctx, filter).Order("created_at, id")
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

// Count returns the number of products matching filter.
func (r *GORMProductRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = newProductID()
	}
	product.NameLower = strings.ToLower(product.Name)
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateByID loads the product, merges patch and saves it in one transaction.
func (r *GORMProductRepository) UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		patch.Apply(&product)
		product.NameLower = strings.ToLower(product.Name)
		return tx.Save(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &product, nil
}

// DeleteByID deletes a product by its ID and returns the deleted row.
func (r *GORMProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return &product, nil
}

// CountByCategory groups products by category and counts each group.
func (r *GORMProductRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	var rows []models.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products by category: %w", err)
	}
	return rows, nil
}

// Close closes the underlying connection pool.
func (r *GORMProductRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
