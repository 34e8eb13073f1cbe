package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"
)

// Pagination defaults used when page or limit is missing or invalid.
const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Routing keys for product events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher publishes domain events. Implemented by pkg/rabbitmq.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ProductEvent is the payload published after each successful mutation.
type ProductEvent struct {
	Type       string          `json:"type"`
	ProductID  string          `json:"productId"`
	Product    *models.Product `json:"product"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// ListQuery holds the listing parameters after parsing.
type ListQuery struct {
	Category string
	Page     int
	Limit    int
}

// ProductPage is one page of a listing.
type ProductPage struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Products []models.Product `json:"products"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, log *slog.Logger) *ProductService {
	if log == nil {
		log = slog.Default()
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// translate maps repository errors onto service errors.
func translate(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return ErrProductNotFound
	}
	return err
}

// ListProducts returns one page of products, optionally filtered by category.
// Total counts every matching product, not just the page.
func (s *ProductService) ListProducts(ctx context.Context, q ListQuery) (*ProductPage, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	filter := repositories.ProductFilter{Category: q.Category}

	// An offset past math.MaxInt is beyond any result set.
	if q.Page-1 > math.MaxInt/q.Limit {
		total, err := s.repo.Count(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Total: total, Page: q.Page, Products: []models.Product{}}, nil
	}

	products, err := s.repo.Find(ctx, filter, repositories.Page{
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{Total: total, Page: q.Page, Products: products}, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

// CreateProduct validates input and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := ValidateProductInput(input); err != nil {
		return nil, err
	}
	product := input.Product()
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	s.publish(ctx, EventProductCreated, &product)
	return &product, nil
}

// UpdateProduct merges patch into an existing product.
// The merged result is not re-validated.
// An empty patch returns the stored product unchanged and publishes nothing.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.IsEmpty() {
		return s.GetProductByID(ctx, id)
	}
	product, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, translate(err)
	}
	s.publish(ctx, EventProductUpdated, product)
	return product, nil
}

// DeleteProduct removes a product and returns what was removed.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	s.publish(ctx, EventProductDeleted, product)
	return product, nil
}

// SearchProducts returns every product whose name contains name, ignoring case.
func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	if name == "" {
		return nil, ErrMissingSearchQuery
	}
	products, err := s.repo.Find(ctx, repositories.ProductFilter{NameContains: name}, repositories.Page{})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// ProductStats maps each category present to its number of products.
func (s *ProductService) ProductStats(ctx context.Context) (map[string]int64, error) {
	rows, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.Count > 0 {
			stats[row.Category] = row.Count
		}
	}
	return stats, nil
}

// publish sends a product event. Failures are logged and never fail the caller.
func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish product event",
			slog.String("event", eventType),
			slog.String("product_id", product.ID),
			slog.Any("error", err),
		)
	}
}
