package handlers

import (
	"errors"

	"productapi/internal/models"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	msgProductNotFound    = "Product not found"
	msgMissingSearchQuery = "Missing search query"
	msgProductDeleted     = "Product deleted successfully"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Mutating routes go through
// guard. The static /search and /stats paths are registered before /:id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/stats", h.HandleProductStats)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", guard, h.HandleCreateProduct)
	productRoutes.Put("/:id", guard, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", guard, h.HandleDeleteProduct)
}

// errorFor converts service errors into fiber errors for the error handler.
// Anything unrecognised is passed through and becomes a 500.
func errorFor(err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, msgProductNotFound)
	case errors.Is(err, services.ErrMissingSearchQuery):
		return fiber.NewError(fiber.StatusBadRequest, msgMissingSearchQuery)
	}
	return err
}

// HandleListProducts lists products with optional category, page and limit.
// Unparsable page or limit values fall back to the defaults.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page, err := h.service.ListProducts(c.UserContext(), services.ListQuery{
		Category: c.Query("category"),
		Page:     c.QueryInt("page", services.DefaultPage),
		Limit:    c.QueryInt("limit", services.DefaultLimit),
	})
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return errorFor(services.DecodeError(err))
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return errorFor(err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct merges the body into an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return errorFor(services.DecodeError(err))
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product and echoes what was removed.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(fiber.Map{
		"message": msgProductDeleted,
		"deleted": product,
	})
}

// HandleSearchProducts finds products whose name contains ?name=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("name"))
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(products)
}

// HandleProductStats returns a category to count mapping.
func (h *ProductHandler) HandleProductStats(c *fiber.Ctx) error {
	stats, err := h.service.ProductStats(c.UserContext())
	if err != nil {
		return errorFor(err)
	}
	return c.JSON(stats)
}
