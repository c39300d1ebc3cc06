package api

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns all categories --> GET /api/categories
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, categories)
}

// Create adds a category --> POST /api/admin/categories
func (h *CategoryHandler) Create(c echo.Context) error {
	input := service.CategoryInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	category, err := h.categoryService.Create(c.Request().Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, category)
}

// Update edits a category --> PUT /api/admin/categories/:id
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid category ID"})
	}

	input := service.CategoryInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	category, err := h.categoryService.Update(c.Request().Context(), id, input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, category)
}

// Delete removes an empty category --> DELETE /api/admin/categories/:id
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid category ID"})
	}
	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Category deleted"})
}
