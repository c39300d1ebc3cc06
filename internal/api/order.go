package api

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/entity"
	"techstore/internal/repository"
	"techstore/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create places an order from the current cart --> POST /api/orders
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input := service.CheckoutInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	input.IdempotencyKey = c.Request().Header.Get("Idempotent-Key")

	order, items, err := h.orderService.Checkout(c.Request().Context(), userID, input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// List returns the caller's orders --> GET /api/orders
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	page := pageFromQuery(c)
	orders, total, err := h.orderService.ListByUser(c.Request().Context(), userID, page)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, orders, total, page)
}

// Get returns one order with its items --> GET /api/orders/:orderId
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	order, items, err := h.orderService.Get(c.Request().Context(), userID, orderID, isStaff(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]interface{}{
		"order": order,
		"items": items,
	})
}

// Cancel cancels a pending order --> PUT /api/orders/:orderId/cancel
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	order, err := h.orderService.Cancel(c.Request().Context(), userID, orderID, isStaff(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// AdminList returns filterable orders --> GET /api/admin/orders
func (h *OrderHandler) AdminList(c echo.Context) error {
	filter := repository.OrderFilter{
		Status:        entity.OrderStatus(c.QueryParam("status")),
		PaymentStatus: entity.PaymentStatus(c.QueryParam("payment_status")),
		Page:          pageFromQuery(c),
	}
	if raw := c.QueryParam("user"); raw != "" {
		userID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return c.JSON(400, map[string]string{"error": "Invalid user ID"})
		}
		filter.UserID = &userID
	}

	orders, total, err := h.orderService.List(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, orders, total, filter.Page)
}

// AdminUpdate changes order or payment status --> PUT /api/admin/orders/:orderId
func (h *OrderHandler) AdminUpdate(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("orderId"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	update := service.StatusUpdate{}
	if err := c.Bind(&update); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), orderID, update)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}
