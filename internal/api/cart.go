package api

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get returns the cart with computed totals --> GET /api/cart
func (h *CartHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	cart, err := h.cartService.GetCart(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, cart)
}

// Add puts a product in the cart --> POST /api/cart
func (h *CartHandler) Add(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input := struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid product ID"})
	}

	item, err := h.cartService.AddItem(c.Request().Context(), userID, productID, input.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, item)
}

// Update sets a new quantity --> PUT /api/cart/:cartItemId
func (h *CartHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := primitive.ObjectIDFromHex(c.Param("cartItemId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid cart item ID"})
	}

	input := struct {
		Quantity int `json:"quantity"`
	}{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	item, err := h.cartService.UpdateQuantity(c.Request().Context(), userID, itemID, input.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, item)
}

// Remove deletes one line --> DELETE /api/cart/:cartItemId
func (h *CartHandler) Remove(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := primitive.ObjectIDFromHex(c.Param("cartItemId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid cart item ID"})
	}

	if err := h.cartService.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Item removed"})
}

// Clear empties the cart --> DELETE /api/cart
func (h *CartHandler) Clear(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.cartService.Clear(c.Request().Context(), userID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "Cart cleared"})
}
