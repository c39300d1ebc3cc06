package api

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/repository"
	"techstore/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns the public catalog --> GET /api/products
func (h *ProductHandler) List(c echo.Context) error {
	filter := repository.ProductFilter{
		ActiveOnly: true,
		Search:     c.QueryParam("search"),
		Page:       pageFromQuery(c),
	}
	if raw := c.QueryParam("category"); raw != "" {
		categoryID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, products, total, filter.Page)
}

// Get returns one product --> GET /api/products/:id
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, product)
}

// AdminList includes inactive products --> GET /api/admin/products
func (h *ProductHandler) AdminList(c echo.Context) error {
	filter := repository.ProductFilter{
		Search: c.QueryParam("search"),
		Page:   pageFromQuery(c),
	}
	if raw := c.QueryParam("category"); raw != "" {
		categoryID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, products, total, filter.Page)
}

// Create adds a product --> POST /api/admin/products
func (h *ProductHandler) Create(c echo.Context) error {
	input := service.ProductInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	product, err := h.productService.Create(c.Request().Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, product)
}

// Update edits a product --> PUT /api/admin/products/:id
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	input := service.ProductInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	product, err := h.productService.Update(c.Request().Context(), id, input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, product)
}

// Delete removes a product --> DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}
	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Product deleted"})
}
