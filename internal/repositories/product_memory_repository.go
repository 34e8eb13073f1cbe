package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"productapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Products are kept in a map keyed by ID, with a separate slice recording
// insertion order.
type MemoryProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MemoryProductRepository) matching(filter ProductFilter) []models.Product {
	needle := strings.ToLower(filter.NameContains)
	result := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Find returns the products matching filter, windowed by page.
func (r *MemoryProductRepository) Find(_ context.Context, filter ProductFilter, page Page) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.matching(filter)
	start := min(max(page.Offset, 0), len(all))
	end := len(all)
	if page.Limit > 0 && page.Limit < end-start {
		end = start + page.Limit
	}
	return all[start:end], nil
}

// Count returns the number of products matching filter.
func (r *MemoryProductRepository) Count(_ context.Context, filter ProductFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if filter == (ProductFilter{}) {
		return int64(len(r.order)), nil
	}
	return int64(len(r.matching(filter))), nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning an ID if none is set.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = newProductID()
	}
	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("product with ID %s already exists", product.ID)
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// UpdateByID merges patch into the stored product.
func (r *MemoryProductRepository) UpdateByID(_ context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	patch.Apply(&product)
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return &product, nil
}

// DeleteByID removes a product and returns what was removed.
func (r *MemoryProductRepository) DeleteByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &product, nil
}

// CountByCategory returns one row per category present, in first-seen order.
func (r *MemoryProductRepository) CountByCategory(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := make(map[string]int)
	var rows []models.CategoryCount
	for _, id := range r.order {
		category := r.products[id].Category
		i, ok := index[category]
		if !ok {
			i = len(rows)
			index[category] = i
			rows = append(rows, models.CategoryCount{Category: category})
		}
		rows[i].Count++
	}
	return rows, nil
}

// Close is a no-op for the in-memory store.
func (r *MemoryProductRepository) Close() error { return nil }
