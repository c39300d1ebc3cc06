package api

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"techstore/internal/service"
)

type AdminHandler struct {
	dashboardService *service.DashboardService
	userService      *service.UserService
}

func NewAdminHandler(dashboardService *service.DashboardService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		dashboardService: dashboardService,
		userService:      userService,
	}
}

// Dashboard returns the aggregate stats --> GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.dashboardService.Stats(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, stats)
}

// ListCustomers --> GET /api/admin/customers
func (h *AdminHandler) ListCustomers(c echo.Context) error {
	page := pageFromQuery(c)
	users, total, err := h.userService.ListCustomers(c.Request().Context(), page)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, users, total, page)
}

// ListStaff --> GET /api/admin/staff
func (h *AdminHandler) ListStaff(c echo.Context) error {
	page := pageFromQuery(c)
	users, total, err := h.userService.ListStaff(c.Request().Context(), page)
	if err != nil {
		return errorJSON(c, err)
	}
	return pagedJSON(c, users, total, page)
}

// CreateStaff --> POST /api/admin/staff
func (h *AdminHandler) CreateStaff(c echo.Context) error {
	input := service.RegisterInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	user, err := h.userService.CreateStaff(c.Request().Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, user)
}

// UpdateUser changes role or active flag --> PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid user ID"})
	}

	input := service.UserUpdate{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), id, input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}
